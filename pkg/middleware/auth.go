package middleware

import (
	"net/http"
	"strings"

	"github.com/shashiranjanraj/groupcart/pkg/auth"
	"github.com/shashiranjanraj/groupcart/pkg/logger"
	"github.com/shashiranjanraj/groupcart/pkg/response"
)

// Participant requires a valid participant token and stores the identity in
// the request context for auth.FromCtx.
func Participant(tokens *auth.Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearer(r)
			if !ok {
				response.Unauthorized(w)
				return
			}
			p, err := tokens.Parse(raw)
			if err != nil {
				logger.WithCtx(r.Context()).Debug("rejected participant token", "error", err)
				response.Unauthorized(w)
				return
			}
			log := logger.WithCtx(r.Context()).With("participant", p.Email)
			ctx := logger.InjectLogger(auth.WithParticipant(r.Context(), p), log)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalParticipant injects the participant when a valid token is sent
// and lets anonymous requests through untouched.
func OptionalParticipant(tokens *auth.Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearer(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			p, err := tokens.Parse(raw)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithParticipant(r.Context(), p)))
		})
	}
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:]), true
	}
	// Browsers cannot set headers on websocket upgrades.
	if t := r.URL.Query().Get("token"); t != "" {
		return t, true
	}
	return "", false
}
