// Package repositories is the storage boundary. Every method takes a
// context, returns typed rows from app/models and maps "no row" onto
// ErrNotFound so callers never need to know about gorm.
package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a single-row lookup matches nothing.
var ErrNotFound = errors.New("repositories: record not found")

// ErrDuplicate is returned when an insert violates a unique index.
var ErrDuplicate = errors.New("repositories: duplicate record")

func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err):
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// isUniqueViolation catches drivers that do not implement gorm's error
// translator.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "Duplicate entry")
}

// Repos bundles every repository bound to the same *gorm.DB, which is
// either the root connection or an open transaction.
type Repos struct {
	Groups  *GroupRepository
	Members *MemberRepository
	Cart    *CartRepository
	Orders  *OrderRepository

	db *gorm.DB
}

// New builds the repository set on db.
func New(db *gorm.DB) Repos {
	return Repos{
		Groups:  NewGroupRepository(db),
		Members: NewMemberRepository(db),
		Cart:    NewCartRepository(db),
		Orders:  NewOrderRepository(db),
		db:      db,
	}
}

// Nested runs fn in a savepoint when r is bound to a transaction, or in a
// fresh transaction otherwise. Only fn's writes are undone when it fails;
// the enclosing transaction stays usable.
func (r Repos) Nested(ctx context.Context, fn func(r Repos) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// TxManager runs a unit of work inside one database transaction.
type TxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// WithinTx commits when fn returns nil and rolls back otherwise. The Repos
// passed to fn are rebuilt on the transaction handle.
func (m *TxManager) WithinTx(ctx context.Context, fn func(r Repos) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}
