package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/groupcart/app/models"
)

// CartRepository handles database operations for CartItem.
type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

// Add persists a new cart item.
func (r *CartRepository) Add(ctx context.Context, item *models.CartItem) error {
	return translate("cart: add", r.db.WithContext(ctx).Create(item).Error)
}

// FindByID looks up one cart item.
func (r *CartRepository) FindByID(ctx context.Context, id string) (models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	return item, translate("cart: find", err)
}

// ListByGroup returns every cart item of a group, oldest first.
func (r *CartRepository) ListByGroup(ctx context.Context, groupID string) ([]models.CartItem, error) {
	var out []models.CartItem
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at asc").Order("id asc").
		Find(&out).Error
	return out, translate("cart: list", err)
}

// CountByGroup returns the number of cart items in a group.
func (r *CartRepository) CountByGroup(ctx context.Context, groupID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.CartItem{}).Where("group_id = ?", groupID).Count(&n).Error
	return n, translate("cart: count", err)
}

// UpdateQuantity sets the quantity of one item.
func (r *CartRepository) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	res := r.db.WithContext(ctx).Model(&models.CartItem{}).Where("id = ?", id).Update("quantity", quantity)
	if res.Error != nil {
		return translate("cart: update quantity", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes one item. Deleting a missing item is not an error.
func (r *CartRepository) Delete(ctx context.Context, id string) error {
	return translate("cart: delete", r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.CartItem{}).Error)
}

// ClearGroup removes every cart item of a group.
func (r *CartRepository) ClearGroup(ctx context.Context, groupID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("group_id = ?", groupID).Delete(&models.CartItem{})
	return res.RowsAffected, translate("cart: clear", res.Error)
}
