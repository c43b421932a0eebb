// Package mongostore implements the repository interfaces on MongoDB, keeping
// comments and likes embedded in their post documents.
package mongostore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"instogram/internal/config"
	"instogram/internal/observability"
	"instogram/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names.
const (
	UsersCollection   = "users"
	FollowsCollection = "follows"
	PostsCollection   = "posts"
)

// Connect dials MongoDB and verifies the connection.
func Connect(ctx context.Context, cfg *config.Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	observability.Logger.Info("mongodb connected", slog.String("database", cfg.MongoDatabase))
	return client, nil
}

// EnsureIndexes creates the unique indexes the store relies on for
// username/email uniqueness, follow-edge uniqueness and content dedup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		FollowsCollection: {
			{Keys: bson.D{{Key: "followerId", Value: 1}, {Key: "followingId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "followingId", Value: 1}}},
		},
		PostsCollection: {
			{Keys: bson.D{{Key: "contentHash", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "authorId", Value: 1}}},
		},
	}

	for name, idx := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// New returns a Store backed by db. client owns the connection and is
// disconnected by Store.Backend.Close.
func New(client *mongo.Client, db *mongo.Database) *repository.Store {
	return &repository.Store{
		Users:   NewUserRepository(db),
		Follows: NewFollowRepository(db),
		Posts:   NewPostRepository(db),
		Backend: backend{client: client},
	}
}

type backend struct {
	client *mongo.Client
}

func (b backend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx, readpref.Primary())
}

func (b backend) Close(ctx context.Context) error {
	return b.client.Disconnect(ctx)
}
