package repository

import (
	"context"

	"instogram/internal/models"
	"instogram/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type followRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewFollowRepository returns a new FollowRepository implementation.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db, log: observability.NewRepoLogger("follows")}
}

func (r *followRepository) Toggle(ctx context.Context, followerID, followingID string) (bool, error) {
	present := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("follower_id = ? AND following_id = ?", followerID, followingID).
			Delete(&models.Follow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		// A concurrent toggle may have inserted the edge already; either way it exists now.
		edge := models.Follow{FollowerID: followerID, FollowingID: followingID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge).Error; err != nil {
			return err
		}
		present = true
		return nil
	})
	if err != nil {
		r.log.LogError(ctx, err, "toggle")
		return false, models.NewInternalError(err)
	}

	fields := map[string]any{"follower_id": followerID, "following_id": followingID}
	if present {
		r.log.LogCreate(ctx, fields)
	} else {
		r.log.LogDelete(ctx, fields)
	}
	return present, nil
}

func (r *followRepository) FollowerIDs(ctx context.Context, userID string) ([]string, error) {
	return r.pluck(ctx, "follower_id", "following_id = ?", userID)
}

func (r *followRepository) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	return r.pluck(ctx, "following_id", "follower_id = ?", userID)
}

func (r *followRepository) pluck(ctx context.Context, column, where, userID string) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where(where, userID).
		Order("created_at ASC").
		Pluck(column, &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}
