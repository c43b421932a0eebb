// Package seed creates demo data through the service layer, so seeded data
// obeys the same validation, dedup and toggle rules as API traffic. It is
// intended for development only.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"instogram/internal/models"
	"instogram/internal/observability"
	"instogram/internal/service"

	"github.com/brianvoe/gofakeit/v6"
)

// Summary counts what a run created.
type Summary struct {
	Users    int
	Follows  int
	Posts    int
	Comments int
	Likes    int
}

// Seeder drives the services with fake data.
type Seeder struct {
	users   *service.UserService
	follows *service.FollowService
	posts   *service.PostService
}

type seededUser struct {
	id       string
	username string
}

// NewSeeder returns a Seeder over the given services.
func NewSeeder(users *service.UserService, follows *service.FollowService, posts *service.PostService) *Seeder {
	return &Seeder{users: users, follows: follows, posts: posts}
}

// Run seeds according to preset. Conflicts (a taken username or duplicate
// post content) are skipped, everything else aborts the run.
func (s *Seeder) Run(ctx context.Context, preset Preset) (Summary, error) {
	if err := preset.Validate(); err != nil {
		return Summary{}, err
	}

	seedValue := preset.RandomSeed
	if seedValue == 0 {
		seedValue = time.Now().UnixNano()
	}
	faker := gofakeit.New(seedValue)

	var summary Summary
	start := time.Now()

	users, err := s.seedUsers(ctx, faker, preset)
	if err != nil {
		return summary, err
	}
	summary.Users = len(users)

	for _, follower := range users {
		for _, target := range users {
			if follower.id == target.id || !chance(faker, preset.FollowProbability) {
				continue
			}
			if err := s.follows.ToggleFollow(ctx, follower.id, target.id); err != nil {
				return summary, fmt.Errorf("follow %s -> %s: %w", follower.username, target.username, err)
			}
			summary.Follows++
		}
	}

	for _, author := range users {
		for i := 0; i < preset.PostsPerUser; i++ {
			post, err := s.posts.AddPost(ctx, service.AddPostInput{
				AuthorID: author.id,
				Content:  faker.Sentence(faker.Number(6, 16)),
				Tags:     tags(faker),
				ImageURL: fmt.Sprintf("https://picsum.photos/seed/%s/800/800", faker.UUID()),
			})
			if models.IsCode(err, models.CodeConflict) {
				continue
			}
			if err != nil {
				return summary, fmt.Errorf("post by %s: %w", author.username, err)
			}
			summary.Posts++

			n, err := s.engage(ctx, faker, preset, post.ID, users)
			if err != nil {
				return summary, err
			}
			summary.Comments += n.Comments
			summary.Likes += n.Likes
		}
	}

	observability.Logger.InfoContext(ctx, "seeding finished",
		slog.String("preset", preset.Name),
		slog.Int("users", summary.Users),
		slog.Int("follows", summary.Follows),
		slog.Int("posts", summary.Posts),
		slog.Int("comments", summary.Comments),
		slog.Int("likes", summary.Likes),
		slog.Duration("elapsed", time.Since(start)),
	)
	return summary, nil
}

func (s *Seeder) seedUsers(ctx context.Context, faker *gofakeit.Faker, preset Preset) ([]seededUser, error) {
	users := make([]seededUser, 0, preset.Users)
	for i := 0; i < preset.Users; i++ {
		username := strings.ToLower(fmt.Sprintf("%s%d", faker.Username(), i))
		err := s.users.Register(ctx, service.RegisterInput{
			Name:     faker.Name(),
			Username: username,
			Email:    username + "@example.com",
			Password: preset.Password,
		})
		if models.IsCode(err, models.CodeConflict) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("register %s: %w", username, err)
		}

		login, err := s.users.Login(ctx, username, preset.Password)
		if err != nil {
			return nil, fmt.Errorf("login %s: %w", username, err)
		}
		users = append(users, seededUser{id: login.UserID, username: username})
	}
	return users, nil
}

func (s *Seeder) engage(ctx context.Context, faker *gofakeit.Faker, preset Preset, postID string, users []seededUser) (Summary, error) {
	var out Summary
	for i := 0; i < preset.CommentsPerPost; i++ {
		commenter := users[faker.Number(0, len(users)-1)]
		if err := s.posts.AddComment(ctx, postID, faker.Sentence(faker.Number(3, 10)), commenter.username); err != nil {
			return out, fmt.Errorf("comment on %s: %w", postID, err)
		}
		out.Comments++
	}
	for _, u := range users {
		if !chance(faker, preset.LikeProbability) {
			continue
		}
		if err := s.posts.AddLike(ctx, postID, u.username); err != nil {
			return out, fmt.Errorf("like on %s: %w", postID, err)
		}
		out.Likes++
	}
	return out, nil
}

// chance reports true with probability p.
func chance(faker *gofakeit.Faker, p float64) bool {
	return faker.Float64Range(0, 1) < p
}

func tags(faker *gofakeit.Faker) []string {
	n := faker.Number(0, 3)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, strings.ToLower(faker.Word()))
	}
	return out
}
