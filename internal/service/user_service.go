// Package service contains the business rules of the feed: registration and
// login, the follow graph and the post store.
package service

import (
	"context"
	"strings"

	"instogram/internal/models"
	"instogram/internal/repository"
)

const minPasswordLength = 5

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
	VerifyPassword(password, digest string) bool
}

// TokenIssuer signs access tokens for a subject.
type TokenIssuer interface {
	Issue(subjectID string) (string, error)
}

// Credentials is what UserService needs from the credential store.
type Credentials interface {
	PasswordHasher
	TokenIssuer
}

type UserService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	creds      Credentials
}

type RegisterInput struct {
	Name     string
	Username string
	Email    string
	Password string
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
}

func NewUserService(userRepo repository.UserRepository, followRepo repository.FollowRepository, creds Credentials) *UserService {
	return &UserService{
		userRepo:   userRepo,
		followRepo: followRepo,
		creds:      creds,
	}
}

// Register validates in a fixed order (name, username, email presence,
// email format, uniqueness, password presence, password length) and stores
// the user with a hashed password.
func (s *UserService) Register(ctx context.Context, in RegisterInput) error {
	if in.Name == "" {
		return models.NewValidationError("Name is required")
	}
	if in.Username == "" {
		return models.NewValidationError("Username is required")
	}
	if in.Email == "" {
		return models.NewValidationError("Email is required")
	}
	if !strings.Contains(in.Email, "@") || !strings.Contains(in.Email, ".") {
		return models.NewValidationError("Invalid email format")
	}

	taken, err := s.userRepo.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return err
	}
	if taken {
		return models.NewConflictError("Username or email already exists")
	}

	if in.Password == "" {
		return models.NewValidationError("Password is required")
	}
	if len(in.Password) < minPasswordLength {
		return models.NewValidationError("Password must be at least 5 characters")
	}

	digest, err := s.creds.HashPassword(in.Password)
	if err != nil {
		return models.NewInternalError(err)
	}

	return s.userRepo.Create(ctx, &models.User{
		Name:     in.Name,
		Username: in.Username,
		Email:    in.Email,
		Password: digest,
	})
}

// Login does not distinguish an unknown username from a wrong password.
func (s *UserService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, models.NewValidationError("Username and password are required")
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || !s.creds.VerifyPassword(password, user.Password) {
		return nil, models.NewUnauthorizedError("invalid credentials")
	}

	token, err := s.creds.Issue(user.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &LoginResult{AccessToken: token, UserID: user.ID}, nil
}

// SearchByUsername matches fragment literally and case-insensitively
// anywhere in the username.
func (s *UserService) SearchByUsername(ctx context.Context, fragment string) ([]models.User, error) {
	users, err := s.userRepo.SearchByUsername(ctx, fragment)
	if err != nil {
		return nil, err
	}
	return publicUsers(users), nil
}

// FindByID returns the user with both sides of its follow graph.
func (s *UserService) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	if id == "" {
		return nil, models.NewValidationError("User id is required")
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	followerIDs, err := s.followRepo.FollowerIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	followers, err := s.userRepo.ListByIDs(ctx, followerIDs)
	if err != nil {
		return nil, err
	}

	followingIDs, err := s.followRepo.FollowingIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	following, err := s.userRepo.ListByIDs(ctx, followingIDs)
	if err != nil {
		return nil, err
	}

	profile := &models.Profile{
		User:      *user,
		Followers: publicUsers(followers),
		Following: publicUsers(following),
	}
	profile.Password = ""
	return profile, nil
}

// Me returns the profile of the authenticated principal.
func (s *UserService) Me(ctx context.Context, principal *models.User) (*models.Profile, error) {
	if principal == nil {
		return nil, models.NewUnauthorizedError("missing credentials")
	}
	return s.FindByID(ctx, principal.ID)
}

func publicUsers(users []models.User) []models.User {
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out
}
