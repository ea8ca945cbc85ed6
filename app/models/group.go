package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GroupStatus is the lifecycle of a shared ordering session.
type GroupStatus string

const (
	GroupBrowsing  GroupStatus = "browsing"
	GroupCheckout  GroupStatus = "checkout" // display-only step while the payer fills in checkout
	GroupOrdered   GroupStatus = "ordered"
	GroupDelivered GroupStatus = "delivered"
)

// Open reports whether the cart may still change and checkout is allowed.
func (s GroupStatus) Open() bool {
	return s == GroupBrowsing || s == GroupCheckout
}

// Group is a shared ordering session joined by code.
type Group struct {
	ID                string           `gorm:"primaryKey;size:36"                  json:"id"`
	Code              string           `gorm:"size:6;uniqueIndex;not null"         json:"code"`
	Status            GroupStatus      `gorm:"size:20;not null;default:browsing"   json:"status"`
	RestaurantID      string           `gorm:"size:64"                             json:"restaurantId,omitempty"`
	RestaurantName    string           `gorm:"size:255"                            json:"restaurantName,omitempty"`
	CheckoutUserEmail string           `gorm:"size:255"                            json:"checkoutUserEmail,omitempty"`
	VenmoHandle       string           `gorm:"size:100"                            json:"venmoHandle,omitempty"`
	VenmoQRCode       string           `gorm:"size:1024"                           json:"venmoQrCode,omitempty"`
	OrderTotal        *decimal.Decimal `gorm:"type:decimal(12,2)"                  json:"orderTotal,omitempty"`
	DeliveryETA       *time.Time       `json:"deliveryEta,omitempty"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

func (g *Group) BeforeCreate(*gorm.DB) error {
	if g.Status == "" {
		g.Status = GroupBrowsing
	}
	newID(&g.ID)
	return nil
}

// GroupMember is a participant who joined a group.
type GroupMember struct {
	ID        string    `gorm:"primaryKey;size:36"                                  json:"id"`
	GroupID   string    `gorm:"size:36;not null;uniqueIndex:idx_group_member_email" json:"groupId"`
	Email     string    `gorm:"size:255;not null;uniqueIndex:idx_group_member_email" json:"email"`
	FirstName string    `gorm:"size:100;not null"                                   json:"firstName"`
	JoinedAt  time.Time `gorm:"autoCreateTime"                                      json:"joinedAt"`
}

func (m *GroupMember) BeforeCreate(*gorm.DB) error {
	newID(&m.ID)
	return nil
}
