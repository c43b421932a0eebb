package seed

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Preset describes how much demo data to create.
type Preset struct {
	Name              string  `yaml:"name"`
	Users             int     `yaml:"users"`
	PostsPerUser      int     `yaml:"posts_per_user"`
	CommentsPerPost   int     `yaml:"comments_per_post"`
	FollowProbability float64 `yaml:"follow_probability"`
	LikeProbability   float64 `yaml:"like_probability"`
	Password          string  `yaml:"password"`
	RandomSeed        int64   `yaml:"random_seed"`
}

// DefaultPreset is used when no preset file is given.
func DefaultPreset() Preset {
	return Preset{
		Name:              "default",
		Users:             20,
		PostsPerUser:      3,
		CommentsPerPost:   2,
		FollowProbability: 0.2,
		LikeProbability:   0.3,
		Password:          "password123",
	}
}

// ParsePreset decodes a YAML preset. Fields left out keep their defaults.
func ParsePreset(r io.Reader) (Preset, error) {
	p := DefaultPreset()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Preset{}, fmt.Errorf("decode preset: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Preset{}, err
	}
	return p, nil
}

// LoadPreset reads a preset file from path.
func LoadPreset(path string) (Preset, error) {
	f, err := os.Open(path)
	if err != nil {
		return Preset{}, fmt.Errorf("open preset: %w", err)
	}
	defer f.Close()
	return ParsePreset(f)
}

// Validate rejects presets the seeder cannot run.
func (p Preset) Validate() error {
	if p.Users < 1 {
		return errors.New("preset: users must be at least 1")
	}
	if p.PostsPerUser < 0 || p.CommentsPerPost < 0 {
		return errors.New("preset: counts must not be negative")
	}
	if p.FollowProbability < 0 || p.FollowProbability > 1 {
		return errors.New("preset: follow_probability must be within [0,1]")
	}
	if p.LikeProbability < 0 || p.LikeProbability > 1 {
		return errors.New("preset: like_probability must be within [0,1]")
	}
	if len(p.Password) < 5 {
		return errors.New("preset: password must be at least 5 characters")
	}
	return nil
}
