package migration

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/groupcart/pkg/database"
	"github.com/shashiranjanraj/groupcart/pkg/logger"
)

type widget struct {
	ID   uint
	Name string
}

type createWidgets struct{}

func (createWidgets) Up(db *gorm.DB) error   { return db.AutoMigrate(&widget{}) }
func (createWidgets) Down(db *gorm.DB) error { return db.Migrator().DropTable(&widget{}) }

func withRegistry(t *testing.T, regs ...registered) {
	saved := registry
	registry = regs
	t.Cleanup(func() { registry = saved })
}

func TestRunRollbackStatus(t *testing.T) {
	withRegistry(t, registered{name: "20260101000000_create_widgets", m: createWidgets{}})

	db, err := database.Open("sqlite", "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	var out bytes.Buffer
	r := New(db, &out, logger.Discard())

	require.NoError(t, r.Run())
	assert.True(t, db.Migrator().HasTable(&widget{}))

	pending, err := r.Pending()
	require.NoError(t, err)
	assert.Empty(t, pending)

	out.Reset()
	require.NoError(t, r.Run())
	assert.Contains(t, out.String(), "Nothing to migrate.")

	out.Reset()
	require.NoError(t, r.Status())
	assert.Contains(t, out.String(), "20260101000000_create_widgets")
	assert.Contains(t, out.String(), "Ran")

	require.NoError(t, r.Rollback())
	assert.False(t, db.Migrator().HasTable(&widget{}))

	pending, err = r.Pending()
	require.NoError(t, err)
	assert.Equal(t, []string{"20260101000000_create_widgets"}, pending)
}

func TestRunWithoutRegistrations(t *testing.T) {
	withRegistry(t)

	db, err := database.Open("sqlite", "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	assert.ErrorIs(t, New(db, nil, logger.Discard()).Run(), ErrNoMigrations)
}

func TestRegisterTwicePanics(t *testing.T) {
	withRegistry(t)
	Register("x", createWidgets{})
	assert.Panics(t, func() { Register("x", createWidgets{}) })
}
