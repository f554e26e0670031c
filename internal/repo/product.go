package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/catalog"
	"github.com/Skotchmaster/storefront/internal/models"
)

type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return storeErr(r.DB.WithContext(ctx).Omit("Category").Create(p).Error)
}

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).Preload("Category").Where("id = ?", id).First(&p).Error; err != nil {
		return nil, storeErr(err)
	}
	return &p, nil
}

func (r *GormRepo) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	var items []models.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, storeErr(err)
	}
	out := make(map[uuid.UUID]models.Product, len(items))
	for _, p := range items {
		out[p.ID] = p
	}
	return out, nil
}

// ListProducts returns the number of matches before pagination and the requested page.
func (r *GormRepo) ListProducts(ctx context.Context, c catalog.Criteria) (int64, []models.Product, error) {
	var total int64
	if err := c.Apply(r.DB.WithContext(ctx).Model(&models.Product{})).Count(&total).Error; err != nil {
		return 0, nil, storeErr(err)
	}
	if total == 0 {
		return 0, []models.Product{}, nil
	}

	var items []models.Product
	q := c.ApplyPage(c.Apply(r.DB.WithContext(ctx).Model(&models.Product{}).Preload("Category")))
	if err := q.Find(&items).Error; err != nil {
		return 0, nil, storeErr(err)
	}
	return total, items, nil
}

// PriceBounds aggregates over the whole catalog, ignoring any filter.
func (r *GormRepo) PriceBounds(ctx context.Context) (PriceRange, error) {
	var row struct {
		MinPrice *float64
		MaxPrice *float64
	}
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).
		Select("MIN(price) AS min_price, MAX(price) AS max_price").
		Scan(&row).Error; err != nil {
		return PriceRange{}, storeErr(err)
	}
	var pr PriceRange
	if row.MinPrice != nil {
		pr.Min = *row.MinPrice
	}
	if row.MaxPrice != nil {
		pr.Max = *row.MaxPrice
	}
	return pr, nil
}

func (r *GormRepo) SaveProduct(ctx context.Context, p *models.Product) error {
	return storeErr(r.DB.WithContext(ctx).Omit("Category").Save(p).Error)
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
