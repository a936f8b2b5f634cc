package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"moderation-api/internal/models"
)

func InitDB() (*gorm.DB, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	// Configure GORM logger
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	// Open connection
	db, err := gorm.Open(postgres.Open(dbURL), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	if err := db.AutoMigrate(&models.MigrationRecord{}); err != nil {
		return nil, fmt.Errorf("error creating migrations table: %v", err)
	}

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("error migrating database: %v", err)
	}

	return db, nil
}

// Migration is a named schema change that runs exactly once.
type Migration struct {
	Name string
	Run  func(*gorm.DB) error
}

func getMigrations() []Migration {
	return []Migration{
		{
			Name: "create_moderation_schema",
			Run: func(db *gorm.DB) error {
				return db.AutoMigrate(
					&models.User{},
					&models.APIKey{},
					&models.Submission{},
					&models.Review{},
					&models.Notification{},
					&models.BillingRecord{},
					&models.RequestLog{},
					&models.AuditLog{},
					&models.AdminToken{},
				)
			},
		},
		{
			Name: "add_submission_review_queue_index",
			Run: func(db *gorm.DB) error {
				return db.Exec(
					"CREATE INDEX IF NOT EXISTS idx_submissions_status_created_at ON submissions (status, created_at DESC)",
				).Error
			},
		},
	}
}

func runMigrations(db *gorm.DB) error {
	for _, migration := range getMigrations() {
		var record models.MigrationRecord
		result := db.Where("name = ?", migration.Name).First(&record)

		if result.Error == gorm.ErrRecordNotFound {
			log.Printf("Running migration: %s", migration.Name)

			err := db.Transaction(func(tx *gorm.DB) error {
				if err := migration.Run(tx); err != nil {
					return err
				}

				return tx.Create(&models.MigrationRecord{Name: migration.Name}).Error
			})

			if err != nil {
				return fmt.Errorf("migration '%s' failed: %v", migration.Name, err)
			}
		} else if result.Error != nil {
			return fmt.Errorf("failed to check migration status: %v", result.Error)
		}
	}

	return nil
}
