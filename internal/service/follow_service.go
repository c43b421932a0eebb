package service

import (
	"context"

	"instogram/internal/models"
	"instogram/internal/observability"
	"instogram/internal/repository"
)

type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{followRepo: followRepo, userRepo: userRepo}
}

// ToggleFollow removes the follower->following edge if it exists and creates
// it otherwise. Following yourself is allowed.
func (s *FollowService) ToggleFollow(ctx context.Context, followerID, followingID string) error {
	if followingID == "" {
		return models.NewValidationError("Following id is required")
	}
	if _, err := s.userRepo.GetByID(ctx, followingID); err != nil {
		return err
	}

	present, err := s.followRepo.Toggle(ctx, followerID, followingID)
	if err != nil {
		return err
	}
	observability.RecordToggle("follow", present)
	return nil
}
