package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"Bazaarly/internal/models"
)

type CategoryService struct {
	db *gorm.DB
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}
	return categories, nil
}

// Upsert inserts categories by slug, renaming existing ones. It returns how
// many rows were written.
func (s *CategoryService) Upsert(ctx context.Context, categories []models.Category) (int64, error) {
	if len(categories) == 0 {
		return 0, nil
	}
	for i := range categories {
		categories[i].Name = strings.TrimSpace(categories[i].Name)
		if categories[i].Slug == "" {
			categories[i].Slug = Slugify(categories[i].Name)
		}
		if categories[i].Name == "" {
			return 0, newValidationError("name", "Category %d has no name", i+1)
		}
	}

	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"name"}),
	}).Create(&categories)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to upsert categories: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Slugify lowercases name and joins its alphanumeric runs with dashes.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
