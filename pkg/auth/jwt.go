// Package auth issues and verifies participant tokens.
//
// There are no accounts. Creating or joining a group returns a signed token
// naming the participant and the group; cart edits are attributed to the
// email inside it and only that participant may change their items.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shashiranjanraj/groupcart/config"
)

// DefaultTTL is how long a participant token stays valid.
const DefaultTTL = 7 * 24 * time.Hour

var ErrInvalidToken = errors.New("auth: invalid token")

// Participant is the identity carried by a token.
type Participant struct {
	GroupID string `json:"groupId"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

// Claims holds the typed JWT payload.
type Claims struct {
	GroupID string `json:"gid"`
	Name    string `json:"name"`
	jwt.RegisteredClaims
}

// Tokens signs and parses HS256 participant tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// FromConfig uses JWT_SECRET and the default TTL.
func FromConfig() *Tokens {
	return NewTokens(config.JWTSecret(), DefaultTTL)
}

// Issue creates a signed token for p.
func (t *Tokens) Issue(p Participant) (string, error) {
	now := t.now()
	claims := Claims{
		GroupID: p.GroupID,
		Name:    p.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strings.ToLower(strings.TrimSpace(p.Email)),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse validates raw and returns the participant it names.
func (t *Tokens) Parse(raw string) (Participant, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return Participant{}, errors.Join(ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" || claims.GroupID == "" {
		return Participant{}, ErrInvalidToken
	}
	return Participant{GroupID: claims.GroupID, Email: claims.Subject, Name: claims.Name}, nil
}

// ─── Context ──────────────────────────────────────────────────────────────────

type ctxKey struct{}

// WithParticipant stores p in ctx.
func WithParticipant(ctx context.Context, p Participant) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromCtx returns the participant stored by the auth middleware.
func FromCtx(ctx context.Context) (Participant, bool) {
	p, ok := ctx.Value(ctxKey{}).(Participant)
	return p, ok
}
