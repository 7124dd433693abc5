package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/abdullah0325/crud-neon/models"
)

// Migrate creates or updates the students table from models.Student. It
// reuses the sqlx pool, so no second set of connections is opened.
func Migrate(db *sqlx.DB, log *zap.Logger) error {
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return fmt.Errorf("error opening gorm: %w", err)
	}

	if err := gdb.AutoMigrate(&models.Student{}); err != nil {
		return fmt.Errorf("error migrating students table: %w", err)
	}

	log.Info("students table verified",
		zap.Strings("columns", []string{"id", "name", "student_class", "section", "gender", "contact", "admission_date", "status"}),
	)
	return nil
}
