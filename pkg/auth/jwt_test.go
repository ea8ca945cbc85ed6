package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)

	raw, err := tokens.Issue(Participant{GroupID: "g1", Email: " Alice@Example.com ", Name: "Alice"})
	require.NoError(t, err)

	p, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, Participant{GroupID: "g1", Email: "alice@example.com", Name: "Alice"}, p)
}

func TestParseRejectsForeignAndExpiredTokens(t *testing.T) {
	issued, err := NewTokens("other", time.Hour).Issue(Participant{GroupID: "g1", Email: "a@example.com"})
	require.NoError(t, err)

	_, err = NewTokens("secret", time.Hour).Parse(issued)
	assert.ErrorIs(t, err, ErrInvalidToken)

	tokens := NewTokens("secret", time.Minute)
	raw, err := tokens.Issue(Participant{GroupID: "g1", Email: "a@example.com"})
	require.NoError(t, err)
	tokens.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = tokens.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tokens.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParticipantContext(t *testing.T) {
	_, ok := FromCtx(context.Background())
	assert.False(t, ok)

	ctx := WithParticipant(context.Background(), Participant{Email: "a@example.com"})
	p, ok := FromCtx(ctx)
	require.True(t, ok)
	assert.Equal(t, "a@example.com", p.Email)
}
