package database

import (
	"errors"
	"time"

	"github.com/commentguesser/backend/internal/game"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const migrationRepairNullThemeTags = "2026-07-02_repair_null_theme_tags"

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB) error
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	migrations := []migrationDefinition{
		{name: migrationRepairNullThemeTags, apply: repairNullThemeTags},
	}

	for _, migration := range migrations {
		var record migrationRecord
		err := db.Where("name = ?", migration.name).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := migration.apply(db); err != nil {
			return err
		}
		appliedAt := time.Now().UTC().Unix()
		if err := db.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: appliedAt}).Error; err != nil {
			return err
		}
		if logger != nil {
			logger.Info("database migration applied", zap.String("migration", migration.name))
		}
	}
	return nil
}

// Rows stocked before the theme column gained its NOT NULL default carry NULL
// tags, which breaks the theme-filtered pool query.
func repairNullThemeTags(db *gorm.DB) error {
	return db.Model(&game.PoolRow{}).
		Where("theme IS NULL").
		Update("theme", "").Error
}
