package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/groupcart/app/models"
)

// OrderRepository handles orders and their frozen snapshots: order items
// and per-participant summaries.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// ─── Orders ──────────────────────────────────────────────────────────────────

func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	return translate("orders: create", r.db.WithContext(ctx).Create(o).Error)
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (models.Order, error) {
	var o models.Order
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&o).Error
	return o, translate("orders: find", err)
}

// FindByGroup returns the newest order of a group.
func (r *OrderRepository) FindByGroup(ctx context.Context, groupID string) (models.Order, error) {
	var o models.Order
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at desc").
		First(&o).Error
	return o, translate("orders: find by group", err)
}

// CountByGroup returns how many orders a group has.
func (r *OrderRepository) CountByGroup(ctx context.Context, groupID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Where("group_id = ?", groupID).Count(&n).Error
	return n, translate("orders: count", err)
}

// Update writes mutable columns (status, delivery_eta, invoices_sent).
func (r *OrderRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate("orders: update", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkInvoicesSent flags the whole order as invoiced.
func (r *OrderRepository) MarkInvoicesSent(ctx context.Context, id string) error {
	return r.Update(ctx, id, map[string]any{"invoices_sent": true})
}

// ─── Items ───────────────────────────────────────────────────────────────────

func (r *OrderRepository) CreateItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return translate("order items: create", r.db.WithContext(ctx).Create(&items).Error)
}

// Items returns an order's frozen items ordered by item name.
func (r *OrderRepository) Items(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	var out []models.OrderItem
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("item_name asc").Order("id asc").
		Find(&out).Error
	return out, translate("order items: list", err)
}

// ─── Summaries ───────────────────────────────────────────────────────────────

func (r *OrderRepository) CreateSummaries(ctx context.Context, summaries []models.UserOrderSummary) error {
	if len(summaries) == 0 {
		return nil
	}
	return translate("summaries: create", r.db.WithContext(ctx).Create(&summaries).Error)
}

// Summaries returns an order's settlement records ordered by user name.
func (r *OrderRepository) Summaries(ctx context.Context, orderID string) ([]models.UserOrderSummary, error) {
	var out []models.UserOrderSummary
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("user_name asc").Order("user_email asc").
		Find(&out).Error
	return out, translate("summaries: list", err)
}

// Summary returns one participant's settlement record.
func (r *OrderRepository) Summary(ctx context.Context, orderID, email string) (models.UserOrderSummary, error) {
	var s models.UserOrderSummary
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND user_email = ?", orderID, normalizeEmail(email)).
		First(&s).Error
	return s, translate("summaries: find", err)
}

// MarkSummarySent records a successful invoice delivery.
func (r *OrderRepository) MarkSummarySent(ctx context.Context, summaryID string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.UserOrderSummary{}).
		Where("id = ?", summaryID).
		Updates(map[string]any{"invoice_sent": true, "invoice_sent_at": at})
	if res.Error != nil {
		return translate("summaries: mark sent", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
