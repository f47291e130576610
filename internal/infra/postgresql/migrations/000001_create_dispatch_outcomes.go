package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/rashup198/merchant-mailer/internal/repository"
)

func createDispatchOutcomesTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_dispatch_outcomes",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.OutcomeModel{}); err != nil {
				return err
			}
			indexes := []string{
				`CREATE INDEX IF NOT EXISTS idx_dispatch_outcomes_batch_id ON dispatch_outcomes (batch_id)`,
				`CREATE INDEX IF NOT EXISTS idx_dispatch_outcomes_status_timestamp ON dispatch_outcomes (status, timestamp)`,
				`CREATE INDEX IF NOT EXISTS idx_dispatch_outcomes_email ON dispatch_outcomes (email)`,
			}
			for _, sql := range indexes {
				if err := tx.Exec(sql).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.OutcomeModel{})
		},
	}
}
