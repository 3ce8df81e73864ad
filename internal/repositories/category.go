package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"alfredoptarigan/resume-analyzer/internal/models"
)

type CategoryRepository interface {
	FindAll(ctx context.Context) ([]models.Category, error)
	ReplaceAll(ctx context.Context, categories []models.Category) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// FindAll implements CategoryRepository.
func (r *categoryRepository) FindAll(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Preload("Keywords", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("position ASC").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find categories: %w", err)
	}

	return categories, nil
}

// ReplaceAll implements CategoryRepository. The whole catalog is swapped in a
// single transaction.
func (r *categoryRepository) ReplaceAll(ctx context.Context, categories []models.Category) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.CategoryKeyword{}).Error; err != nil {
			return fmt.Errorf("failed to clear category keywords: %w", err)
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Category{}).Error; err != nil {
			return fmt.Errorf("failed to clear categories: %w", err)
		}

		for i := range categories {
			categories[i].Position = i
			for j := range categories[i].Keywords {
				categories[i].Keywords[j].Position = j
			}
			if err := tx.Create(&categories[i]).Error; err != nil {
				return fmt.Errorf("failed to create category %s: %w", categories[i].Name, err)
			}
		}

		return nil
	})
}
