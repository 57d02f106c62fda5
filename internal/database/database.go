package database

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect(cfg *config.Config) error {
	var err error
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	slog.Info("database connected")
	return nil
}

// Models lists every table owned by the application, parents first.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.RefreshToken{},
		&models.DonorProfile{},
		&models.EmergencyContact{},
		&models.Appointment{},
		&models.Donation{},
		&models.BloodUnit{},
		&models.SystemLog{},
	}
}

// Migrate creates or updates the schema on db, including constraints GORM
// tags cannot express.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}

	// At most one scheduled appointment per donor and calendar date.
	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_appointments_user_date_scheduled
		ON appointments (user_id, appointment_date) WHERE status = 'scheduled'`).Error
}

func MigrateShared() error {
	return Migrate(DB)
}

func Ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
