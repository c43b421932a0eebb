package service

import (
	"context"
	"time"

	"instogram/internal/cache"
	"instogram/internal/models"
	"instogram/internal/observability"
	"instogram/internal/repository"
)

// FeedStore is the cache in front of the latest feed.
type FeedStore interface {
	Read(ctx context.Context, load cache.FeedLoader) ([]byte, error)
	Invalidate(ctx context.Context)
}

type PostService struct {
	postRepo repository.PostRepository
	feed     FeedStore
	now      func() time.Time
}

type AddPostInput struct {
	AuthorID string
	Content  string
	Tags     []string
	ImageURL string
}

func NewPostService(postRepo repository.PostRepository, feed FeedStore) *PostService {
	return &PostService{
		postRepo: postRepo,
		feed:     feed,
		now:      time.Now,
	}
}

// AddPost rejects empty content and content that already exists on any post.
func (s *PostService) AddPost(ctx context.Context, in AddPostInput) (*models.Post, error) {
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}

	hash := models.ContentHash(in.Content)
	exists, err := s.postRepo.ExistsByContentHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.NewConflictError("Post already exists")
	}

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	now := s.now().UTC()
	post := &models.Post{
		Content:     in.Content,
		ContentHash: hash,
		AuthorID:    in.AuthorID,
		Tags:        tags,
		ImageURL:    in.ImageURL,
		Comments:    []models.Comment{},
		Likes:       []models.Like{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	s.feed.Invalidate(ctx)
	return post, nil
}

// AddComment appends a comment without touching the post's updated time.
func (s *PostService) AddComment(ctx context.Context, postID, content, username string) error {
	if err := s.requirePost(ctx, postID); err != nil {
		return err
	}
	if content == "" {
		return models.NewValidationError("Comment content is required")
	}

	if err := s.postRepo.AddComment(ctx, postID, &models.Comment{Content: content, Username: username}); err != nil {
		return err
	}

	s.feed.Invalidate(ctx)
	return nil
}

// AddLike toggles username's like on the post.
func (s *PostService) AddLike(ctx context.Context, postID, username string) error {
	if err := s.requirePost(ctx, postID); err != nil {
		return err
	}

	liked, err := s.postRepo.ToggleLike(ctx, postID, username)
	if err != nil {
		return err
	}
	observability.RecordToggle("like", liked)

	s.feed.Invalidate(ctx)
	return nil
}

// GetPostByID returns the post with its author's public projection.
func (s *PostService) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	public := post.WithPublicAuthor()
	return &public, nil
}

// GetPostsByAuthorID returns the author's posts newest first. No posts is
// not an error.
func (s *PostService) GetPostsByAuthorID(ctx context.Context, authorID string) ([]models.Post, error) {
	posts, err := s.postRepo.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.WithPublicAuthor())
	}
	return out, nil
}

// LatestFeed returns the serialized feed of all posts, newest first, served
// from the feed cache when possible. Authors keep their email here.
func (s *PostService) LatestFeed(ctx context.Context) ([]byte, error) {
	return s.feed.Read(ctx, s.postRepo.ListLatest)
}

func (s *PostService) requirePost(ctx context.Context, postID string) error {
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return err
	}
	if !exists {
		return models.NewNotFoundError("Post", postID)
	}
	return nil
}
