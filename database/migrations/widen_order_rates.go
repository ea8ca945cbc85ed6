package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/groupcart/app/models"
	"github.com/shashiranjanraj/groupcart/pkg/migration"
)

func init() {
	migration.Register("20260402000000_widen_order_rates", widenOrderRates{})
}

// widenOrderRates moves orders.tax_rate and orders.tip_rate from
// decimal(8,4) to decimal(10,6) so rates such as 0.08875 are kept exactly.
// SQLite ignores declared precision and is left alone.
type widenOrderRates struct{}

func (widenOrderRates) Up(db *gorm.DB) error {
	if db.Dialector.Name() == "sqlite" {
		return nil
	}
	m := db.Migrator()
	if err := m.AlterColumn(&models.Order{}, "TaxRate"); err != nil {
		return err
	}
	return m.AlterColumn(&models.Order{}, "TipRate")
}

// Down keeps the wide columns: narrowing would round stored rates.
func (widenOrderRates) Down(*gorm.DB) error { return nil }
