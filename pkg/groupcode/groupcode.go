// Package groupcode generates the short codes people type to join a group.
//
// Codes are six characters from an alphabet without 0, O, I or 1 so they
// survive being read aloud or copied from a screen.
package groupcode

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

const (
	// Alphabet is the set of characters a code is drawn from.
	Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	// Length is the number of characters in a code.
	Length = 6
	// DefaultAttempts bounds Unique when maxAttempts is not positive.
	DefaultAttempts = 10
)

// ErrExhausted is returned when every attempt produced a code already in use.
var ErrExhausted = errors.New("groupcode: could not generate a unique code")

var alphabetLen = big.NewInt(int64(len(Alphabet)))

// New returns a random code.
func New() (string, error) {
	b := make([]byte, Length)
	for i := range b {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("groupcode: random: %w", err)
		}
		b[i] = Alphabet[n.Int64()]
	}
	return string(b), nil
}

// ExistsFunc reports whether code is already taken.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// Unique draws codes until exists reports one as free, giving up with
// ErrExhausted after maxAttempts draws.
func Unique(ctx context.Context, exists ExistsFunc, maxAttempts int) (string, error) {
	return unique(ctx, New, exists, maxAttempts)
}

func unique(ctx context.Context, gen func() (string, error), exists ExistsFunc, maxAttempts int) (string, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultAttempts
	}
	for i := 0; i < maxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		code, err := gen()
		if err != nil {
			return "", err
		}
		taken, err := exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("groupcode: check %s: %w", code, err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrExhausted
}
