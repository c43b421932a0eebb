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

type followRepository struct {
	coll *mongo.Collection
	log  *observability.RepoLogger
}

// NewFollowRepository returns a FollowRepository over the follows collection.
func NewFollowRepository(db *mongo.Database) repository.FollowRepository {
	return &followRepository{coll: db.Collection(FollowsCollection), log: observability.NewRepoLogger(FollowsCollection)}
}

func (r *followRepository) Toggle(ctx context.Context, followerID, followingID string) (bool, error) {
	pair := bson.M{"followerId": followerID, "followingId": followingID}
	fields := map[string]any{"follower_id": followerID, "following_id": followingID}

	res, err := r.coll.DeleteOne(ctx, pair)
	if err != nil {
		r.log.LogError(ctx, err, "toggle")
		return false, models.NewInternalError(err)
	}
	if res.DeletedCount > 0 {
		r.log.LogDelete(ctx, fields)
		return false, nil
	}

	now := time.Now().UTC()
	edge := models.Follow{
		ID:          uuid.NewString(),
		FollowerID:  followerID,
		FollowingID: followingID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	// The unique pair index turns a concurrent insert into a duplicate key,
	// which leaves the edge present just the same.
	if _, err := r.coll.InsertOne(ctx, edge); err != nil && !mongo.IsDuplicateKeyError(err) {
		r.log.LogError(ctx, err, "toggle")
		return false, models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, fields)
	return true, nil
}

func (r *followRepository) FollowerIDs(ctx context.Context, userID string) ([]string, error) {
	return r.peers(ctx, bson.M{"followingId": userID}, func(f models.Follow) string { return f.FollowerID })
}

func (r *followRepository) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	return r.peers(ctx, bson.M{"followerId": userID}, func(f models.Follow) string { return f.FollowingID })
}

func (r *followRepository) peers(ctx context.Context, filter bson.M, pick func(models.Follow) string) ([]string, error) {
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	defer cursor.Close(ctx)

	var edges []models.Follow
	if err := cursor.All(ctx, &edges); err != nil {
		return nil, models.NewInternalError(err)
	}

	ids := make([]string, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, pick(e))
	}
	return ids, nil
}
