package repository

import (
	"context"
	"errors"

	"instogram/internal/models"
	"instogram/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type postRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewPostRepository returns a new PostRepository implementation.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, log: observability.NewRepoLogger("posts")}
}

// withEngagement loads the author (inner join, so orphaned posts are
// dropped) and the embedded comments and likes in insertion order.
func withEngagement(db *gorm.DB) *gorm.DB {
	return db.
		InnerJoins("Author").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Likes", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		})
}

func (r *postRepository) ExistsByContentHash(ctx context.Context, hash string) (bool, error) {
	return r.exists(ctx, "content_hash = ?", hash)
}

func (r *postRepository) Exists(ctx context.Context, id string) (bool, error) {
	return r.exists(ctx, "id = ?", id)
}

func (r *postRepository) exists(ctx context.Context, where string, arg any) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where(where, arg).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if post.ContentHash == "" {
		post.ContentHash = models.ContentHash(post.Content)
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Post already exists")
		}
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, map[string]any{"post_id": post.ID, "author_id": post.AuthorID})
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := withEngagement(r.db.WithContext(ctx)).
		Where("posts.id = ?", id).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID string) ([]models.Post, error) {
	posts := []models.Post{}
	err := withEngagement(r.db.WithContext(ctx)).
		Where("posts.author_id = ?", authorID).
		Order("posts.created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListLatest(ctx context.Context) ([]models.Post, error) {
	posts := []models.Post{}
	err := withEngagement(r.db.WithContext(ctx)).
		Order("posts.created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) AddComment(ctx context.Context, postID string, comment *models.Comment) error {
	comment.PostID = postID
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		r.log.LogError(ctx, err, "add_comment")
		return models.NewInternalError(err)
	}
	r.log.LogUpdate(ctx, map[string]any{"post_id": postID, "comment_by": comment.Username})
	return nil
}

func (r *postRepository) ToggleLike(ctx context.Context, postID, username string) (bool, error) {
	present := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("post_id = ? AND username = ?", postID, username).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		like := models.Like{PostID: postID, Username: username}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
			return err
		}
		present = true
		return nil
	})
	if err != nil {
		r.log.LogError(ctx, err, "toggle_like")
		return false, models.NewInternalError(err)
	}

	r.log.LogUpdate(ctx, map[string]any{"post_id": postID, "username": username, "liked": present})
	return present, nil
}
