package database

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dfworx/auth-service/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewPostgresDB initializes a connection to PostgreSQL using GORM and waits,
// with exponential backoff, until the server answers a ping.
func NewPostgresDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN()), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	if err := pingWithRetry(sqlDB.Ping, cfg.ConnectTimeout()); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	slog.Info("connected to postgres")
	return db, nil
}

func pingWithRetry(ping func() error, timeout time.Duration) error {
	if timeout <= 0 {
		return ping()
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 100 * time.Millisecond
	eb.RandomizationFactor = 0
	eb.Multiplier = 2
	eb.MaxInterval = timeout / 4
	eb.MaxElapsedTime = timeout

	err := backoff.Retry(func() error {
		if err := ping(); err != nil {
			slog.Warn("database not ready", "error", err)
			return err
		}
		return nil
	}, eb)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}
