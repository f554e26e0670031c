package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) CreateOrder(ctx context.Context, o *models.Order) error {
	return storeErr(r.DB.WithContext(ctx).Create(o).Error)
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&o).Error; err != nil {
		return nil, storeErr(err)
	}
	return &o, nil
}

// ListOrdersByUser only ever returns orders owned by userID.
func (r *GormRepo) ListOrdersByUser(ctx context.Context, userID uuid.UUID, offset, limit int) (int64, []models.Order, error) {
	base := r.DB.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return 0, nil, storeErr(err)
	}

	q := r.DB.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID).
		Preload("Items").Order("created_at DESC").Order("id ASC").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	var items []models.Order
	if err := q.Find(&items).Error; err != nil {
		return 0, nil, storeErr(err)
	}
	return total, items, nil
}

// SaveOrder updates the order row. When replaceItems is set the stored items
// are swapped for o.Items in the same transaction.
func (r *GormRepo) SaveOrder(ctx context.Context, o *models.Order, replaceItems bool) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if replaceItems {
			if err := tx.Where("order_id = ?", o.ID).Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}
			for i := range o.Items {
				o.Items[i].ID = uuid.Nil
				o.Items[i].OrderID = o.ID
			}
			if len(o.Items) > 0 {
				if err := tx.Create(&o.Items).Error; err != nil {
					return err
				}
			}
		}
		return tx.Omit("Items").Save(o).Error
	})
	return storeErr(err)
}

func (r *GormRepo) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	return storeErr(r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Order{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	}))
}
