package repositories

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/groupcart/app/models"
)

// GroupRepository handles database operations for Group.
type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// Create persists a new group.
func (r *GroupRepository) Create(ctx context.Context, g *models.Group) error {
	return translate("groups: create", r.db.WithContext(ctx).Create(g).Error)
}

// FindByID looks up a group by primary key.
func (r *GroupRepository) FindByID(ctx context.Context, id string) (models.Group, error) {
	var g models.Group
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&g).Error
	return g, translate("groups: find", err)
}

// FindByCode looks up a group by its join code, case-insensitively.
func (r *GroupRepository) FindByCode(ctx context.Context, code string) (models.Group, error) {
	var g models.Group
	err := r.db.WithContext(ctx).Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).First(&g).Error
	return g, translate("groups: find by code", err)
}

// CodeExists reports whether a join code is taken.
func (r *GroupRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Group{}).Where("code = ?", code).Count(&n).Error
	return n > 0, translate("groups: code exists", err)
}

// Update writes the given columns on one group.
func (r *GroupRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.Group{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate("groups: update", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// TransitionStatus moves a group to `to` only if its current status is one
// of `from`, writing extra columns in the same statement. It returns the
// number of rows changed: 0 means the guard failed.
func (r *GroupRepository) TransitionStatus(ctx context.Context, id string, from []models.GroupStatus, to models.GroupStatus, extra map[string]any) (int64, error) {
	fields := map[string]any{"status": to}
	for k, v := range extra {
		fields[k] = v
	}
	res := r.db.WithContext(ctx).Model(&models.Group{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(fields)
	return res.RowsAffected, translate("groups: transition status", res.Error)
}
