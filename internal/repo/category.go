package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) CreateCategory(ctx context.Context, c *models.Category) error {
	return storeErr(r.DB.WithContext(ctx).Create(c).Error)
}

func (r *GormRepo) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var c models.Category
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, storeErr(err)
	}
	return &c, nil
}

func (r *GormRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	var items []models.Category
	if err := r.DB.WithContext(ctx).Order("title ASC").Find(&items).Error; err != nil {
		return nil, storeErr(err)
	}
	return items, nil
}

func (r *GormRepo) SaveCategory(ctx context.Context, c *models.Category) error {
	return storeErr(r.DB.WithContext(ctx).Save(c).Error)
}

// DeleteCategory refuses to remove a category that still has products.
func (r *GormRepo) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Where("category_id = ?", id).Count(&n).Error; err != nil {
		return storeErr(err)
	}
	if n > 0 {
		return ErrInUse
	}

	res := r.DB.WithContext(ctx).Delete(&models.Category{}, "id = ?", id)
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
