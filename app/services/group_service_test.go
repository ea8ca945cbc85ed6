package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/groupcart/app/models"
	"github.com/shashiranjanraj/groupcart/app/repositories"
	"github.com/shashiranjanraj/groupcart/pkg/auth"
	"github.com/shashiranjanraj/groupcart/pkg/catalog"
	"github.com/shashiranjanraj/groupcart/pkg/groupcode"
	"github.com/shashiranjanraj/groupcart/pkg/logger"
	"github.com/shashiranjanraj/groupcart/pkg/realtime"
)

func (f *fixture) tokens() *auth.Tokens { return auth.NewTokens("test-secret", time.Hour) }

func (f *fixture) groups() *GroupService {
	return NewGroupService(f.repos, repositories.NewTxManager(f.db), f.tokens(), catalog.Default(), f.events, logger.Discard())
}

func TestCreateGroupAddsCreatorAndIssuesToken(t *testing.T) {
	f := newFixture(t)
	sess, err := f.groups().Create(f.ctx, CreateGroupInput{Email: " Alice@Example.com ", FirstName: "Alice"})
	require.NoError(t, err)

	assert.Len(t, sess.Group.Code, groupcode.Length)
	assert.Equal(t, models.GroupBrowsing, sess.Group.Status)
	assert.Equal(t, "alice@example.com", sess.Member.Email)
	assert.True(t, sess.IsNewMember)

	p, err := f.tokens().Parse(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.Participant{GroupID: sess.Group.ID, Email: "alice@example.com", Name: "Alice"}, p)
}

func TestCreateGroupValidatesIdentity(t *testing.T) {
	f := newFixture(t)
	_, err := f.groups().Create(f.ctx, CreateGroupInput{Email: "nope"})

	var ae *AppError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, KindValidation, ae.Kind)
	assert.Contains(t, ae.Fields, "email")
	assert.Contains(t, ae.Fields, "firstName")
}

func TestJoinGroupIsIdempotentAndCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	svc := f.groups()
	created, err := svc.Create(f.ctx, CreateGroupInput{Email: "alice@example.com", FirstName: "Alice"})
	require.NoError(t, err)

	code := created.Group.Code
	first, err := svc.Join(f.ctx, JoinGroupInput{Code: " " + code + " ", Email: "bob@example.com", FirstName: "Bob"})
	require.NoError(t, err)
	assert.True(t, first.IsNewMember)

	again, err := svc.Join(f.ctx, JoinGroupInput{Code: strings.ToLower(code), Email: "BOB@example.com", FirstName: "Robert"})
	require.NoError(t, err)
	assert.False(t, again.IsNewMember)
	assert.Equal(t, first.Member.ID, again.Member.ID)
	assert.Equal(t, "Bob", again.Member.FirstName)

	members, err := svc.Members(f.ctx, created.Group.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "alice@example.com", members[0].Email)

	_, err = svc.Join(f.ctx, JoinGroupInput{Code: "ZZZZZZ", Email: "c@example.com", FirstName: "C"})
	assert.Equal(t, KindNotFound, KindOf(err))

	assert.Equal(t, []string{realtime.GroupUpdated}, f.events.Types())
}

func TestSelectRestaurant(t *testing.T) {
	f := newFixture(t)
	svc := f.groups()
	sess, err := svc.Create(f.ctx, CreateGroupInput{Email: "alice@example.com", FirstName: "Alice"})
	require.NoError(t, err)
	p := auth.Participant{GroupID: sess.Group.ID, Email: "alice@example.com", Name: "Alice"}

	g, err := svc.SelectRestaurant(f.ctx, p, sess.Group.ID, "rest-2")
	require.NoError(t, err)
	assert.Equal(t, "Sakura Sushi", g.RestaurantName)

	_, err = svc.SelectRestaurant(f.ctx, p, sess.Group.ID, "rest-404")
	assert.Equal(t, KindNotFound, KindOf(err))

	stranger := auth.Participant{GroupID: "other", Email: "x@example.com"}
	_, err = svc.SelectRestaurant(f.ctx, stranger, sess.Group.ID, "rest-1")
	assert.ErrorIs(t, err, ErrNotMember)

	f.addItem(t, sess.Group.ID, "alice@example.com", "Alice", "California Roll", "8.99", 1)
	_, err = svc.SelectRestaurant(f.ctx, p, sess.Group.ID, "rest-1")
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestGroupStatusTransitions(t *testing.T) {
	f := newFixture(t)
	svc := f.groups()
	sess, err := svc.Create(f.ctx, CreateGroupInput{Email: "alice@example.com", FirstName: "Alice"})
	require.NoError(t, err)
	p := auth.Participant{GroupID: sess.Group.ID, Email: "alice@example.com"}

	g, err := svc.UpdateStatus(f.ctx, p, sess.Group.ID, models.GroupCheckout)
	require.NoError(t, err)
	assert.Equal(t, models.GroupCheckout, g.Status)

	g, err = svc.UpdateStatus(f.ctx, p, sess.Group.ID, models.GroupBrowsing)
	require.NoError(t, err)
	assert.Equal(t, models.GroupBrowsing, g.Status)

	_, err = svc.UpdateStatus(f.ctx, p, sess.Group.ID, models.GroupDelivered)
	assert.Equal(t, KindConflict, KindOf(err), "only ordered groups can be delivered")

	_, err = svc.UpdateStatus(f.ctx, p, sess.Group.ID, models.GroupOrdered)
	assert.Equal(t, KindValidation, KindOf(err), "ordered is reserved for checkout")
}

func TestSetGroupDeliveryETA(t *testing.T) {
	f := newFixture(t)
	svc := f.groups()
	sess, err := svc.Create(f.ctx, CreateGroupInput{Email: "alice@example.com", FirstName: "Alice"})
	require.NoError(t, err)
	p := auth.Participant{GroupID: sess.Group.ID, Email: "alice@example.com"}

	eta := time.Date(2026, 3, 1, 19, 30, 0, 0, time.UTC)
	g, err := svc.SetDeliveryETA(f.ctx, p, sess.Group.ID, eta)
	require.NoError(t, err)
	require.NotNil(t, g.DeliveryETA)
	assert.True(t, g.DeliveryETA.Equal(eta))
}
