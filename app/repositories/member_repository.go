package repositories

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/groupcart/app/models"
)

// MemberRepository handles database operations for GroupMember.
type MemberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// Add inserts m unless the email already belongs to the group. Returns
// true when a new row was written.
func (r *MemberRepository) Add(ctx context.Context, m *models.GroupMember) (bool, error) {
	m.Email = normalizeEmail(m.Email)
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(m)
	return res.RowsAffected > 0, translate("members: add", res.Error)
}

// Find returns one member of a group by email.
func (r *MemberRepository) Find(ctx context.Context, groupID, email string) (models.GroupMember, error) {
	var m models.GroupMember
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND email = ?", groupID, normalizeEmail(email)).
		First(&m).Error
	return m, translate("members: find", err)
}

// List returns a group's members in join order.
func (r *MemberRepository) List(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	var out []models.GroupMember
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("joined_at asc").Order("id asc").
		Find(&out).Error
	return out, translate("members: list", err)
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
