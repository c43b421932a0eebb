// Command main seeds demo data through the service layer.
package main

import (
	"context"
	"flag"
	"log"

	"instogram/internal/config"
	"instogram/internal/seed"
	"instogram/internal/server"

	"github.com/joho/godotenv"
)

func main() {
	presetPath := flag.String("preset", "", "Path to a YAML seed preset (defaults to the built-in preset)")
	users := flag.Int("users", 0, "Override the preset's user count")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	preset := seed.DefaultPreset()
	if *presetPath != "" {
		preset, err = seed.LoadPreset(*presetPath)
		if err != nil {
			log.Fatalf("Failed to load preset: %v", err)
		}
	}
	if *users > 0 {
		preset.Users = *users
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer func() {
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	userService, followService, postService := srv.Services()
	summary, err := seed.NewSeeder(userService, followService, postService).Run(context.Background(), preset)
	if err != nil {
		log.Printf("Seeding failed: %v", err)
		return
	}

	log.Printf("Seeded %d users, %d follows, %d posts, %d comments, %d likes",
		summary.Users, summary.Follows, summary.Posts, summary.Comments, summary.Likes)
	log.Printf("All seeded users have the password: %s", preset.Password)
}
