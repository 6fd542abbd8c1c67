package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/journey-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(domain.Models()...)
}

// EnsureJourneyIndexes adds the secondary indexes the struct tags do not
// express. Statements are portable between Postgres and SQLite.
func EnsureJourneyIndexes(db *gorm.DB) error {
	stmts := []struct{ name, sql string }{
		{"idx_user_token_expires_at", `CREATE INDEX IF NOT EXISTS idx_user_token_expires_at ON user_token(expires_at);`},
		{"idx_user_progress_current_day", `CREATE INDEX IF NOT EXISTS idx_user_progress_current_day ON user_progress(current_day);`},
		{"idx_skill_tree_user_completed", `CREATE INDEX IF NOT EXISTS idx_skill_tree_user_completed ON skill_tree(user_id, completed);`},
	}
	for _, s := range stmts {
		if err := db.Exec(s.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", s.name, err)
		}
	}
	return nil
}

// Migrate runs the schema migration and index setup.
func Migrate(db *gorm.DB) error {
	if err := AutoMigrateAll(db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return EnsureJourneyIndexes(db)
}
