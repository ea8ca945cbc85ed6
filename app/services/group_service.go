package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shashiranjanraj/groupcart/app/models"
	"github.com/shashiranjanraj/groupcart/app/repositories"
	"github.com/shashiranjanraj/groupcart/pkg/auth"
	"github.com/shashiranjanraj/groupcart/pkg/catalog"
	"github.com/shashiranjanraj/groupcart/pkg/groupcode"
	"github.com/shashiranjanraj/groupcart/pkg/realtime"
)

type CreateGroupInput struct {
	Email     string
	FirstName string
}

type JoinGroupInput struct {
	Code      string
	Email     string
	FirstName string
}

// GroupSession is returned when someone creates or joins a group. Token
// identifies them on every later call.
type GroupSession struct {
	Group       models.Group       `json:"group"`
	Member      models.GroupMember `json:"member"`
	Token       string             `json:"token"`
	IsNewMember bool               `json:"isNewMember"`
}

// GroupService manages groups and their members.
type GroupService struct {
	repos   repositories.Repos
	tx      *repositories.TxManager
	tokens  *auth.Tokens
	catalog *catalog.Catalog
	events  realtime.Publisher
	log     *slog.Logger
}

func NewGroupService(repos repositories.Repos, tx *repositories.TxManager, tokens *auth.Tokens, cat *catalog.Catalog, events realtime.Publisher, log *slog.Logger) *GroupService {
	return &GroupService{repos: repos, tx: tx, tokens: tokens, catalog: cat, events: events, log: log}
}

// Create opens a new group with a fresh join code. The creator becomes its
// first member.
func (s *GroupService) Create(ctx context.Context, in CreateGroupInput) (GroupSession, error) {
	email, name, err := identity(in.Email, in.FirstName)
	if err != nil {
		return GroupSession{}, err
	}

	code, err := groupcode.Unique(ctx, s.repos.Groups.CodeExists, groupcode.DefaultAttempts)
	if err != nil {
		return GroupSession{}, internal("failed to generate unique group code", err)
	}

	var sess GroupSession
	err = s.tx.WithinTx(ctx, func(r repositories.Repos) error {
		sess.Group = models.Group{Code: code, Status: models.GroupBrowsing}
		if err := r.Groups.Create(ctx, &sess.Group); err != nil {
			return internal("failed to create group", err)
		}
		sess.Member = models.GroupMember{GroupID: sess.Group.ID, Email: email, FirstName: name}
		if _, err := r.Members.Add(ctx, &sess.Member); err != nil {
			return internal("failed to add member", err)
		}
		return nil
	})
	if err != nil {
		return GroupSession{}, err
	}
	sess.IsNewMember = true

	if sess.Token, err = s.issue(sess.Member); err != nil {
		return GroupSession{}, err
	}
	s.log.Info("group created", "group_id", sess.Group.ID, "code", code)
	return sess, nil
}

// Join adds a member to the group with the given code. Joining twice is
// harmless and returns the existing membership.
func (s *GroupService) Join(ctx context.Context, in JoinGroupInput) (GroupSession, error) {
	email, name, err := identity(in.Email, in.FirstName)
	if err != nil {
		return GroupSession{}, err
	}
	if strings.TrimSpace(in.Code) == "" {
		return GroupSession{}, validation("code is required")
	}

	group, err := s.repos.Groups.FindByCode(ctx, in.Code)
	if err != nil {
		return GroupSession{}, lookup("group", err)
	}

	m := models.GroupMember{GroupID: group.ID, Email: email, FirstName: name}
	created, err := s.repos.Members.Add(ctx, &m)
	if err != nil {
		return GroupSession{}, internal("failed to join group", err)
	}
	if !created {
		if m, err = s.repos.Members.Find(ctx, group.ID, email); err != nil {
			return GroupSession{}, lookup("member", err)
		}
	}

	sess := GroupSession{Group: group, Member: m, IsNewMember: created}
	if sess.Token, err = s.issue(m); err != nil {
		return GroupSession{}, err
	}
	if created {
		s.events.Publish(ctx, realtime.Event{
			Type:    realtime.GroupUpdated,
			GroupID: group.ID,
			Data:    map[string]any{"memberJoined": m.FirstName},
		})
	}
	return sess, nil
}

func (s *GroupService) issue(m models.GroupMember) (string, error) {
	token, err := s.tokens.Issue(auth.Participant{GroupID: m.GroupID, Email: m.Email, Name: m.FirstName})
	if err != nil {
		return "", internal("failed to issue token", err)
	}
	return token, nil
}

func (s *GroupService) Get(ctx context.Context, groupID string) (models.Group, error) {
	g, err := s.repos.Groups.FindByID(ctx, groupID)
	if err != nil {
		return models.Group{}, lookup("group", err)
	}
	return g, nil
}

// Members lists the members of a group in the order they joined.
func (s *GroupService) Members(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	if _, err := s.Get(ctx, groupID); err != nil {
		return nil, err
	}
	members, err := s.repos.Members.List(ctx, groupID)
	if err != nil {
		return nil, internal("failed to list members", err)
	}
	return members, nil
}

func (s *GroupService) Member(ctx context.Context, groupID, email string) (models.GroupMember, error) {
	m, err := s.repos.Members.Find(ctx, groupID, email)
	if err != nil {
		return models.GroupMember{}, lookup("member", err)
	}
	return m, nil
}

// SelectRestaurant picks the restaurant the group orders from. It can only
// change while browsing, and not while the cart holds another restaurant's
// items.
func (s *GroupService) SelectRestaurant(ctx context.Context, p auth.Participant, groupID, restaurantID string) (models.Group, error) {
	if err := requireMember(p, groupID); err != nil {
		return models.Group{}, err
	}
	rest, ok := s.catalog.Restaurant(restaurantID)
	if !ok {
		return models.Group{}, notFound("restaurant not found")
	}

	g, err := s.Get(ctx, groupID)
	if err != nil {
		return models.Group{}, err
	}
	if g.Status != models.GroupBrowsing {
		return models.Group{}, conflict(ErrGroupClosed.Error(), ErrGroupClosed)
	}
	if g.RestaurantID != "" && g.RestaurantID != rest.ID {
		n, err := s.repos.Cart.CountByGroup(ctx, groupID)
		if err != nil {
			return models.Group{}, internal("failed to count cart", err)
		}
		if n > 0 {
			return models.Group{}, conflict("clear the cart before switching restaurants", nil)
		}
	}

	if err := s.repos.Groups.Update(ctx, groupID, map[string]any{
		"restaurant_id":   rest.ID,
		"restaurant_name": rest.Name,
	}); err != nil {
		return models.Group{}, lookup("group", err)
	}
	g.RestaurantID, g.RestaurantName = rest.ID, rest.Name

	s.publish(ctx, g)
	return g, nil
}

// groupTransitions lists the status changes members may request directly.
// ordered is only reached through checkout.
var groupTransitions = map[models.GroupStatus][]models.GroupStatus{
	models.GroupBrowsing:  {models.GroupCheckout},
	models.GroupCheckout:  {models.GroupBrowsing},
	models.GroupDelivered: {models.GroupOrdered},
}

// UpdateStatus moves the group between browsing and checkout, or marks an
// ordered group delivered.
func (s *GroupService) UpdateStatus(ctx context.Context, p auth.Participant, groupID string, to models.GroupStatus) (models.Group, error) {
	if err := requireMember(p, groupID); err != nil {
		return models.Group{}, err
	}
	from, ok := groupTransitions[to]
	if !ok {
		return models.Group{}, validation("status must be browsing, checkout or delivered")
	}

	n, err := s.repos.Groups.TransitionStatus(ctx, groupID, from, to, nil)
	if err != nil {
		return models.Group{}, internal("failed to update group status", err)
	}
	g, err := s.Get(ctx, groupID)
	if err != nil {
		return models.Group{}, err
	}
	if n == 0 && g.Status != to {
		return models.Group{}, conflict("group cannot move from "+string(g.Status)+" to "+string(to), nil)
	}

	s.publish(ctx, g)
	return g, nil
}

// SetDeliveryETA records when the order is expected.
func (s *GroupService) SetDeliveryETA(ctx context.Context, p auth.Participant, groupID string, eta time.Time) (models.Group, error) {
	if err := requireMember(p, groupID); err != nil {
		return models.Group{}, err
	}
	eta = eta.UTC()
	if err := s.repos.Groups.Update(ctx, groupID, map[string]any{"delivery_eta": eta}); err != nil {
		return models.Group{}, lookup("group", err)
	}
	g, err := s.Get(ctx, groupID)
	if err != nil {
		return models.Group{}, err
	}
	s.publish(ctx, g)
	return g, nil
}

func (s *GroupService) publish(ctx context.Context, g models.Group) {
	s.events.Publish(ctx, realtime.Event{Type: realtime.GroupUpdated, GroupID: g.ID, Data: g})
}

// identity normalises a participant's email and first name.
func identity(email, firstName string) (string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	firstName = strings.TrimSpace(firstName)
	fields := map[string]string{}
	if email == "" || !strings.Contains(email, "@") {
		fields["email"] = "A valid email is required."
	}
	if firstName == "" {
		fields["firstName"] = "First name is required."
	}
	if len(fields) > 0 {
		return "", "", &AppError{Kind: KindValidation, Message: "Validation failed", Fields: fields}
	}
	return email, firstName, nil
}

// requireMember checks that p's token was issued for groupID.
func requireMember(p auth.Participant, groupID string) error {
	if p.Email == "" || p.GroupID != groupID {
		return &AppError{Kind: KindForbidden, Message: ErrNotMember.Error(), Err: ErrNotMember}
	}
	return nil
}

// isNotFound reports whether err is a repository miss.
func isNotFound(err error) bool {
	return errors.Is(err, repositories.ErrNotFound)
}
