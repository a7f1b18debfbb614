package models

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CategoriesRepository struct {
	db *gorm.DB
}

func NewCategoriesRepository(db *gorm.DB) *CategoriesRepository {
	return &CategoriesRepository{db: db}
}

// GetAllCategories lists categories by name. activeOnly drops inactive rows.
func (r *CategoriesRepository) GetAllCategories(ctx context.Context, activeOnly bool) ([]Category, error) {
	var categories []Category
	query := r.db.WithContext(ctx).Order("name")
	if activeOnly {
		query = query.Scopes(Active)
	}
	if err := query.Find(&categories).Error; err != nil {
		return nil, translateError(err)
	}
	return categories, nil
}

func (r *CategoriesRepository) CountCategories(ctx context.Context, activeOnly bool) (int64, error) {
	var total int64
	query := r.db.WithContext(ctx).Model(&Category{})
	if activeOnly {
		query = query.Scopes(Active)
	}
	if err := query.Count(&total).Error; err != nil {
		return 0, translateError(err)
	}
	return total, nil
}

func (r *CategoriesRepository) GetBySlug(ctx context.Context, slug string) (*Category, error) {
	var category Category
	if err := r.db.WithContext(ctx).
		Preload("Parent").
		Where("slug = ?", slug).
		First(&category).Error; err != nil {
		return nil, translateError(err)
	}
	return &category, nil
}

// CreateCategory inserts the row as is. Callers run Validate first;
// only the unique and foreign keys are checked here.
func (r *CategoriesRepository) CreateCategory(ctx context.Context, category *Category) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(category).Error)
}

// DeleteCategory fails with ErrProtected while children or products reference it.
func (r *CategoriesRepository) DeleteCategory(ctx context.Context, category *Category) error {
	res := r.db.WithContext(ctx).Delete(&Category{}, category.ID)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
