package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/groupcart/app/models"
	"github.com/shashiranjanraj/groupcart/pkg/migration"
)

func init() {
	migration.Register("20260301000000_create_groups_table", &createTable{model: &models.Group{}, table: "groups"})
	migration.Register("20260301000001_create_group_members_table", &createTable{model: &models.GroupMember{}, table: "group_members"})
	migration.Register("20260301000002_create_cart_items_table", &createTable{model: &models.CartItem{}, table: "cart_items"})
	migration.Register("20260301000003_create_orders_table", &createTable{model: &models.Order{}, table: "orders"})
	migration.Register("20260301000004_create_order_items_table", &createTable{model: &models.OrderItem{}, table: "order_items"})
	migration.Register("20260301000005_create_user_order_summary_table", &createTable{model: &models.UserOrderSummary{}, table: "user_order_summary"})
}

// createTable is a migration that creates one table from its model and
// drops it on rollback.
type createTable struct {
	model any
	table string
}

func (m *createTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(m.model)
}

func (m *createTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(m.table)
}
