package mongostore

import (
	"context"
	"os"
	"testing"
	"time"

	"instogram/internal/config"
	"instogram/internal/models"
	"instogram/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore connects to MONGODB_URI and creates a throwaway database.
// The tests are skipped when no MongoDB is available.
func newTestStore(t *testing.T) *repository.Store {
	t.Helper()
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set, skipping mongostore integration tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	cfg := &config.Config{MongoURI: uri, MongoDatabase: "instogram_test_" + uuid.NewString()[:8]}
	client, err := Connect(ctx, cfg)
	if err != nil {
		t.Skipf("mongodb unavailable: %v", err)
	}
	db := client.Database(cfg.MongoDatabase)
	require.NoError(t, EnsureIndexes(ctx, db))

	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return New(client, db)
}

func TestMongoStore_Users(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	bob := &models.User{Name: "Bob", Username: "Bobby", Email: "bob@example.com", Password: "digest"}
	require.NoError(t, store.Users.Create(ctx, bob))
	require.NoError(t, store.Users.Create(ctx, &models.User{Name: "A", Username: "a.b", Email: "ab@example.com", Password: "x"}))

	err := store.Users.Create(ctx, &models.User{Name: "Dup", Username: "Bobby", Email: "dup@example.com", Password: "x"})
	assert.Equal(t, models.CodeConflict, models.ErrorCode(err))

	exists, err := store.Users.ExistsByUsernameOrEmail(ctx, "nobody", "bob@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	found, err := store.Users.SearchByUsername(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, bob.ID, found[0].ID)

	found, err = store.Users.SearchByUsername(ctx, ".")
	require.NoError(t, err)
	require.Len(t, found, 1, "regex metacharacters match literally")
	assert.Equal(t, "a.b", found[0].Username)

	_, err = store.Users.GetByID(ctx, "missing")
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestMongoStore_FollowAndLikeToggles(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := &models.User{Name: "Alice", Username: "alice", Email: "alice@example.com", Password: "x"}
	bob := &models.User{Name: "Bob", Username: "bob", Email: "bob@example.com", Password: "x"}
	require.NoError(t, store.Users.Create(ctx, alice))
	require.NoError(t, store.Users.Create(ctx, bob))

	present, err := store.Follows.Toggle(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, present)
	followers, err := store.Follows.FollowerIDs(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{alice.ID}, followers)

	present, err = store.Follows.Toggle(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, present)

	post := &models.Post{Content: "hello", AuthorID: bob.ID}
	require.NoError(t, store.Posts.Create(ctx, post))
	assert.Equal(t, models.CodeConflict, models.ErrorCode(store.Posts.Create(ctx, &models.Post{Content: "hello", AuthorID: alice.ID})))

	liked, err := store.Posts.ToggleLike(ctx, post.ID, "alice")
	require.NoError(t, err)
	assert.True(t, liked)
	require.NoError(t, store.Posts.AddComment(ctx, post.ID, &models.Comment{Content: "hi", Username: "alice"}))

	got, err := store.Posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Author)
	assert.Equal(t, "bob", got.Author.Username)
	assert.Len(t, got.Likes, 1)
	assert.Len(t, got.Comments, 1)

	liked, err = store.Posts.ToggleLike(ctx, post.ID, "alice")
	require.NoError(t, err)
	assert.False(t, liked)

	_, err = store.Posts.ToggleLike(ctx, "missing", "alice")
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))

	latest, err := store.Posts.ListLatest(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Empty(t, latest[0].Likes)
}
