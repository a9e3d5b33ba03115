package db

import (
	"fmt"

	"echomemo/internal/auth"
	"echomemo/internal/note"
	"echomemo/internal/style"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&auth.User{},
		&note.Note{},
		&style.CustomStyle{},
	); err != nil {
		return err
	}

	stmts := []string{
		// one name per user; built-in names are rejected in the store
		`create unique index if not exists uq_ai_styles_user_name on ai_styles(user_id, name);`,
		`create index if not exists idx_notes_user_recency on notes(user_id, (coalesce(update_time, create_time)) desc);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}
	return nil
}
