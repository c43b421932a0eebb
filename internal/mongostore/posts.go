package mongostore

import (
	"context"
	"time"

	"instogram/internal/models"
	"instogram/internal/observability"
	"instogram/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type postRepository struct {
	coll *mongo.Collection
	log  *observability.RepoLogger
}

// NewPostRepository returns a PostRepository over the posts collection.
func NewPostRepository(db *mongo.Database) repository.PostRepository {
	return &postRepository{coll: db.Collection(PostsCollection), log: observability.NewRepoLogger(PostsCollection)}
}

// withAuthor builds an aggregation that filters posts, sorts newest first and
// joins each post to its author. Posts whose author is gone are dropped.
func withAuthor(match bson.D) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: UsersCollection},
			{Key: "localField", Value: "authorId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "author"},
		}}},
		{{Key: "$unwind", Value: "$author"}},
	}
}

func (r *postRepository) aggregate(ctx context.Context, match bson.D) ([]models.Post, error) {
	cursor, err := r.coll.Aggregate(ctx, withAuthor(match))
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) count(ctx context.Context, filter bson.M) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}

func (r *postRepository) ExistsByContentHash(ctx context.Context, hash string) (bool, error) {
	return r.count(ctx, bson.M{"contentHash": hash})
}

func (r *postRepository) Exists(ctx context.Context, id string) (bool, error) {
	return r.count(ctx, bson.M{"_id": id})
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	post.ContentHash = models.ContentHash(post.Content)
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	post.UpdatedAt = post.CreatedAt
	if post.Tags == nil {
		post.Tags = []string{}
	}
	// $push needs arrays, not nulls.
	post.Comments = []models.Comment{}
	post.Likes = []models.Like{}

	doc := *post
	doc.Author = nil
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.NewConflictError("Post already exists")
		}
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, map[string]any{"post_id": post.ID, "author_id": post.AuthorID})
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	posts, err := r.aggregate(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, models.NewNotFoundError("Post", id)
	}
	return &posts[0], nil
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID string) ([]models.Post, error) {
	return r.aggregate(ctx, bson.D{{Key: "authorId", Value: authorID}})
}

func (r *postRepository) ListLatest(ctx context.Context) ([]models.Post, error) {
	return r.aggregate(ctx, bson.D{})
}

func (r *postRepository) AddComment(ctx context.Context, postID string, comment *models.Comment) error {
	now := time.Now().UTC()
	comment.PostID = postID
	comment.CreatedAt, comment.UpdatedAt = now, now

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{"$push": bson.M{"comments": comment}},
	)
	if err != nil {
		r.log.LogError(ctx, err, "add_comment")
		return models.NewInternalError(err)
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("Post", postID)
	}
	r.log.LogUpdate(ctx, map[string]any{"post_id": postID, "comment_by": comment.Username})
	return nil
}

func (r *postRepository) ToggleLike(ctx context.Context, postID, username string) (bool, error) {
	fields := map[string]any{"post_id": postID, "username": username}

	// Both updates are conditional on the array contents, so each is atomic
	// on its own and concurrent toggles never produce a duplicate like.
	pulled, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": postID, "likes.username": username},
		bson.M{"$pull": bson.M{"likes": bson.M{"username": username}}},
	)
	if err != nil {
		r.log.LogError(ctx, err, "toggle_like")
		return false, models.NewInternalError(err)
	}
	if pulled.ModifiedCount > 0 {
		fields["liked"] = false
		r.log.LogUpdate(ctx, fields)
		return false, nil
	}

	now := time.Now().UTC()
	like := models.Like{Username: username, CreatedAt: now, UpdatedAt: now}
	pushed, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": postID, "likes.username": bson.M{"$ne": username}},
		bson.M{"$push": bson.M{"likes": like}},
	)
	if err != nil {
		r.log.LogError(ctx, err, "toggle_like")
		return false, models.NewInternalError(err)
	}
	if pushed.MatchedCount == 0 {
		exists, err := r.Exists(ctx, postID)
		if err != nil {
			return false, err
		}
		if !exists {
			return false, models.NewNotFoundError("Post", postID)
		}
	}

	fields["liked"] = true
	r.log.LogUpdate(ctx, fields)
	return true, nil
}
