package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/roksva123/go-wrike-export/internal/config"
	"github.com/roksva123/go-wrike-export/internal/repository"
	"github.com/roksva123/go-wrike-export/internal/service"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed load config:", err)
	}

	ctx := context.Background()

	// Connect database
	repo, err := repository.NewPostgresRepo(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed connect DB:", err)
	}
	defer repo.Close()

	// Ensure tables exist
	if err := repo.RunMigrations(ctx); err != nil {
		log.Fatal("Failed run migrations:", err)
	}

	// Hash and upsert admin from ADMIN_USERNAME / ADMIN_PASSWORD
	auth := service.NewAuthService(repo, cfg.JWTSecret)
	if err := auth.SeedAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatal("Failed seed admin:", err)
	}

	fmt.Println("Admin created successfully!")
	fmt.Println("Username:", cfg.AdminUsername)
}
