package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus tracks fulfilment after checkout.
type OrderStatus string

const (
	OrderPlaced    OrderStatus = "placed"
	OrderPreparing OrderStatus = "preparing"
	OrderInTransit OrderStatus = "in_transit"
	OrderDelivered OrderStatus = "delivered"
)

var orderStatusRank = map[OrderStatus]int{
	OrderPlaced:    0,
	OrderPreparing: 1,
	OrderInTransit: 2,
	OrderDelivered: 3,
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	_, ok := orderStatusRank[s]
	return ok
}

// CanAdvanceTo reports whether next is later in the lifecycle than s.
func (s OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	cur, ok1 := orderStatusRank[s]
	nxt, ok2 := orderStatusRank[next]
	return ok1 && ok2 && nxt > cur
}

// Order is the immutable settlement snapshot created once per group
// checkout. Only Status, InvoicesSent and DeliveryETA change afterwards.
type Order struct {
	ID           string          `gorm:"primaryKey;size:36"               json:"id"`
	GroupID      string          `gorm:"size:36;not null;uniqueIndex"     json:"groupId"`
	Status       OrderStatus     `gorm:"size:20;not null;default:placed"  json:"status"`
	DeliveryETA  *time.Time      `json:"deliveryEta,omitempty"`
	Subtotal     decimal.Decimal `gorm:"type:decimal(12,2);not null"      json:"subtotal"`
	TaxRate      decimal.Decimal `gorm:"type:decimal(10,6);not null"      json:"taxRate"`
	TaxAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null"      json:"taxAmount"`
	TipRate      decimal.Decimal `gorm:"type:decimal(10,6);not null"      json:"tipRate"`
	TipAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null"      json:"tipAmount"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null"      json:"totalAmount"`
	OrderedAt    time.Time       `json:"orderedAt"`
	InvoicesSent bool            `gorm:"not null;default:false"           json:"invoicesSent"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.Status == "" {
		o.Status = OrderPlaced
	}
	newID(&o.ID)
	return nil
}

// OrderItem is a frozen copy of a cart item at checkout.
type OrderItem struct {
	ID                  string          `gorm:"primaryKey;size:36"          json:"id"`
	OrderID             string          `gorm:"size:36;not null;index"      json:"orderId"`
	AddedByEmail        string          `gorm:"size:255;not null"           json:"addedByEmail"`
	AddedByName         string          `gorm:"size:100;not null"           json:"addedByName"`
	ItemName            string          `gorm:"size:255;not null"           json:"itemName"`
	Quantity            int             `gorm:"not null"                    json:"quantity"`
	Price               decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	SpecialInstructions string          `gorm:"type:text"                   json:"specialInstructions,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	newID(&i.ID)
	return nil
}

// LineTotal is price × quantity, unrounded.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// UserOrderSummary is one participant's settlement record for an order.
// Invoice delivery is tracked here, per participant.
type UserOrderSummary struct {
	ID            string          `gorm:"primaryKey;size:36"                               json:"id"`
	OrderID       string          `gorm:"size:36;not null;uniqueIndex:idx_summary_user"     json:"orderId"`
	UserEmail     string          `gorm:"size:255;not null;uniqueIndex:idx_summary_user"    json:"userEmail"`
	UserName      string          `gorm:"size:100;not null"                                json:"userName"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"                      json:"subtotal"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null"                      json:"taxAmount"`
	TipAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null"                      json:"tipAmount"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null"                      json:"totalAmount"`
	InvoiceSent   bool            `gorm:"not null;default:false"                           json:"invoiceSent"`
	InvoiceSentAt *time.Time      `json:"invoiceSentAt,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func (UserOrderSummary) TableName() string { return "user_order_summary" }

func (s *UserOrderSummary) BeforeCreate(*gorm.DB) error {
	newID(&s.ID)
	return nil
}
