package db

import (
	"fmt"

	"github.com/tsago2003/gpt/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// InitDB connects to PostgreSQL and migrates the summaries table.
func InitDB(dsn string) (*gorm.DB, error) {
	return Open(postgres.Open(dsn))
}

// Open migrates the schema on any gorm dialector; tests pass an in-memory sqlite one.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}

	if err := db.AutoMigrate(&model.Task{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}
