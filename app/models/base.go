// Package models holds the typed rows persisted by the repositories.
//
// Primary keys are UUID strings assigned in BeforeCreate. Money and rates
// are decimal.Decimal so no figure ever passes through float64.
package models

import "github.com/google/uuid"

// newID fills *id with a fresh UUID when it is empty. Called from every
// model's BeforeCreate hook.
func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
