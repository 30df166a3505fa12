package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"Bazaarly/internal/config"
	"Bazaarly/internal/database"
	"Bazaarly/internal/logger"
	"Bazaarly/internal/middleware"
	"Bazaarly/internal/models"
	"Bazaarly/internal/services"
)

type seedFile struct {
	Categories []struct {
		Name string `yaml:"name"`
		Slug string `yaml:"slug"`
	} `yaml:"categories"`
}

func loadCategories(path string) ([]models.Category, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	categories := make([]models.Category, 0, len(file.Categories))
	for _, c := range file.Categories {
		if c.Name == "" {
			continue
		}
		slug := c.Slug
		if slug == "" {
			slug = services.Slugify(c.Name)
		}
		categories = append(categories, models.Category{Name: c.Name, Slug: slug})
	}
	return categories, nil
}

func main() {
	path := flag.String("categories", "categories.yaml", "category seed file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	_, syncLogger := logger.Initialize(cfg.IsProduction())
	defer syncLogger()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		zap.L().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		zap.L().Fatal("Failed to migrate database", zap.Error(err))
	}

	ctx := context.Background()

	categories, err := loadCategories(*path)
	if err != nil {
		zap.L().Fatal("Failed to load categories", zap.Error(err))
	}
	n, err := services.NewCategoryService(db).Upsert(ctx, categories)
	if err != nil {
		zap.L().Fatal("Failed to seed categories", zap.Error(err))
	}
	zap.L().Info("Categories seeded", zap.Int64("rows", n))

	// ADMIN_EMAIL and ADMIN_PASSWORD bootstrap the first staff account.
	email, password := os.Getenv("ADMIN_EMAIL"), os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}

	users := services.NewUserService(db)
	admin, err := users.Register(ctx, "admin", email, password)
	var conflictErr *services.StateConflictError
	switch {
	case errors.As(err, &conflictErr):
		zap.L().Info("Admin account already exists", zap.String("email", email))
		return
	case err != nil:
		zap.L().Fatal("Failed to create admin", zap.Error(err))
	}

	if err := db.Model(admin).Update("role", models.RoleAdmin).Error; err != nil {
		zap.L().Fatal("Failed to promote admin", zap.Error(err))
	}

	token, err := middleware.IssueToken(cfg.JWTSecret, admin.ID, models.RoleAdmin, 24*time.Hour)
	if err != nil {
		zap.L().Fatal("Failed to issue admin token", zap.Error(err))
	}
	fmt.Printf("Admin %s created. Token (24h): %s\n", email, token)
}
