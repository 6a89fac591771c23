// Package migrations holds the schema history. Each file registers one
// migration in init; the runner applies them in name order.
package migrations

import (
	"gorm.io/gorm"

	"github.com/coldcutclub/storefront/app/models"
	"github.com/coldcutclub/storefront/pkg/migration"
	"github.com/coldcutclub/storefront/pkg/queue"
)

func init() {
	migration.Register(migration.Migration{
		Name: "0001_create_core_tables",
		Up: func(db *gorm.DB) error {
			return db.AutoMigrate(
				&models.User{},
				&models.Product{},
				&models.CartItem{},
				&models.Order{},
				&models.OrderItem{},
				&queue.FailedJobRecord{},
			)
		},
		Down: func(db *gorm.DB) error {
			return db.Migrator().DropTable(
				&queue.FailedJobRecord{},
				&models.OrderItem{},
				&models.Order{},
				&models.CartItem{},
				&models.Product{},
				&models.User{},
			)
		},
	})
}
