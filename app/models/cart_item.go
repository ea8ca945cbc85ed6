package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartItem is one participant's pending request for a menu item. It is
// mutable until checkout, then deleted.
type CartItem struct {
	ID                  string          `gorm:"primaryKey;size:36"          json:"id"`
	GroupID             string          `gorm:"size:36;not null;index"      json:"groupId"`
	AddedByEmail        string          `gorm:"size:255;not null"           json:"addedByEmail"`
	AddedByName         string          `gorm:"size:100;not null"           json:"addedByName"`
	MenuItemID          string          `gorm:"size:64"                     json:"menuItemId,omitempty"`
	ItemName            string          `gorm:"size:255;not null"           json:"itemName"`
	ItemDescription     string          `gorm:"type:text"                   json:"itemDescription,omitempty"`
	Quantity            int             `gorm:"not null"                    json:"quantity"`
	Price               decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	SpecialInstructions string          `gorm:"type:text"                   json:"specialInstructions,omitempty"`
	CreatedAt           time.Time       `gorm:"index"                       json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

func (c *CartItem) BeforeCreate(*gorm.DB) error {
	newID(&c.ID)
	return nil
}

// LineTotal is price × quantity, unrounded.
func (c CartItem) LineTotal() decimal.Decimal {
	return c.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}
