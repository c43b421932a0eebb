package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Follow is a directed edge: FollowerID follows FollowingID.
// At most one edge exists per ordered pair.
type Follow struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"id"`
	FollowerID  string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_follow_pair;index:idx_follows_follower" bson:"followerId" json:"follower_id"`
	FollowingID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_follow_pair;index:idx_follows_following" bson:"followingId" json:"following_id"`
	CreatedAt   time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}

// BeforeCreate assigns a fresh UUID when the caller left ID empty.
func (f *Follow) BeforeCreate(_ *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
