package service

import (
	"context"
	"errors"
	"testing"

	"instogram/internal/cache"
	"instogram/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn                 func(context.Context, string) (*models.User, error)
	getByUsernameFn           func(context.Context, string) (*models.User, error)
	existsByUsernameOrEmailFn func(context.Context, string, string) (bool, error)
	createFn                  func(context.Context, *models.User) error
	searchByUsernameFn        func(context.Context, string) ([]models.User, error)
	listByIDsFn               func(context.Context, []string) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	return s.existsByUsernameOrEmailFn(ctx, username, email)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) SearchByUsername(ctx context.Context, fragment string) ([]models.User, error) {
	return s.searchByUsernameFn(ctx, fragment)
}
func (s *userRepoStub) ListByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	return s.listByIDsFn(ctx, ids)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id string) (*models.User, error) {
			return &models.User{ID: id}, nil
		},
		getByUsernameFn:           func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		existsByUsernameOrEmailFn: func(_ context.Context, _, _ string) (bool, error) { return false, nil },
		createFn:                  func(_ context.Context, _ *models.User) error { return nil },
		searchByUsernameFn:        func(_ context.Context, _ string) ([]models.User, error) { return nil, nil },
		listByIDsFn:               func(_ context.Context, _ []string) ([]models.User, error) { return nil, nil },
	}
}

// followRepoStub is a stub for repository.FollowRepository.
type followRepoStub struct {
	toggleFn       func(context.Context, string, string) (bool, error)
	followerIDsFn  func(context.Context, string) ([]string, error)
	followingIDsFn func(context.Context, string) ([]string, error)
}

func (s *followRepoStub) Toggle(ctx context.Context, followerID, followingID string) (bool, error) {
	return s.toggleFn(ctx, followerID, followingID)
}
func (s *followRepoStub) FollowerIDs(ctx context.Context, userID string) ([]string, error) {
	return s.followerIDsFn(ctx, userID)
}
func (s *followRepoStub) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	return s.followingIDsFn(ctx, userID)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		toggleFn:       func(_ context.Context, _, _ string) (bool, error) { return true, nil },
		followerIDsFn:  func(_ context.Context, _ string) ([]string, error) { return nil, nil },
		followingIDsFn: func(_ context.Context, _ string) ([]string, error) { return nil, nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	existsByContentHashFn func(context.Context, string) (bool, error)
	createFn              func(context.Context, *models.Post) error
	existsFn              func(context.Context, string) (bool, error)
	getByIDFn             func(context.Context, string) (*models.Post, error)
	listByAuthorFn        func(context.Context, string) ([]models.Post, error)
	listLatestFn          func(context.Context) ([]models.Post, error)
	addCommentFn          func(context.Context, string, *models.Comment) error
	toggleLikeFn          func(context.Context, string, string) (bool, error)
}

func (s *postRepoStub) ExistsByContentHash(ctx context.Context, hash string) (bool, error) {
	return s.existsByContentHashFn(ctx, hash)
}
func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) Exists(ctx context.Context, id string) (bool, error) {
	return s.existsFn(ctx, id)
}
func (s *postRepoStub) GetByID(ctx context.Context, id string) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) ListByAuthor(ctx context.Context, authorID string) ([]models.Post, error) {
	return s.listByAuthorFn(ctx, authorID)
}
func (s *postRepoStub) ListLatest(ctx context.Context) ([]models.Post, error) {
	return s.listLatestFn(ctx)
}
func (s *postRepoStub) AddComment(ctx context.Context, postID string, comment *models.Comment) error {
	return s.addCommentFn(ctx, postID, comment)
}
func (s *postRepoStub) ToggleLike(ctx context.Context, postID, username string) (bool, error) {
	return s.toggleLikeFn(ctx, postID, username)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		existsByContentHashFn: func(_ context.Context, _ string) (bool, error) { return false, nil },
		createFn:              func(_ context.Context, _ *models.Post) error { return nil },
		existsFn:              func(_ context.Context, _ string) (bool, error) { return true, nil },
		getByIDFn:             func(_ context.Context, _ string) (*models.Post, error) { return &models.Post{}, nil },
		listByAuthorFn:        func(_ context.Context, _ string) ([]models.Post, error) { return nil, nil },
		listLatestFn:          func(_ context.Context) ([]models.Post, error) { return nil, nil },
		addCommentFn:          func(_ context.Context, _ string, _ *models.Comment) error { return nil },
		toggleLikeFn:          func(_ context.Context, _, _ string) (bool, error) { return true, nil },
	}
}

// feedStub records invalidations and delegates reads to the loader.
type feedStub struct {
	invalidations int
}

func (f *feedStub) Read(ctx context.Context, load cache.FeedLoader) ([]byte, error) {
	posts, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return []byte("[]"), nil
	}
	return []byte(posts[0].ID), nil
}

func (f *feedStub) Invalidate(_ context.Context) {
	f.invalidations++
}

// credsStub hashes by prefixing and issues "token-<id>".
type credsStub struct {
	hashErr error
}

func (c credsStub) HashPassword(password string) (string, error) {
	if c.hashErr != nil {
		return "", c.hashErr
	}
	return "hashed:" + password, nil
}

func (c credsStub) VerifyPassword(password, digest string) bool {
	return digest == "hashed:"+password
}

func (c credsStub) Issue(subjectID string) (string, error) {
	return "token-" + subjectID, nil
}

func assertAppError(t *testing.T, err error, code, message string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T", err)
	assert.Equal(t, code, appErr.Code)
	if message != "" {
		assert.Equal(t, message, appErr.Message)
	}
}
