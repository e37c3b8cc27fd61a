package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"portfolio/internal/config"
	"portfolio/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const (
	maxOpenConns    = 25
	maxIdleConns    = 5
	connMaxLifetime = 5 * time.Minute
	connMaxIdleTime = 10 * time.Minute
	pingTimeout     = 5 * time.Second
)

// Open connects to the configured database, configures the pool and migrates
// every model.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector

	if cfg.IsPostgres() {
		slog.Info("Connecting to PostgreSQL database")
		dialector = postgres.Open(cfg.GetPostgresDSN())
	} else {
		dbPath := cfg.GetSQLitePath()
		slog.Info("Connecting to SQLite database", "path", dbPath)
		sqlDB, err := sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database: %w", err)
		}
		// SQLite allows a single writer; serialise through one connection so
		// concurrent inserts never observe SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
		dialector = sqlite.Dialector{
			DriverName: "sqlite",
			DSN:        dbPath,
			Conn:       sqlDB,
		}
	}

	// SQL statements are never logged; they may carry message bodies.
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.IsPostgres() {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(maxOpenConns)
		sqlDB.SetMaxIdleConns(maxIdleConns)
		sqlDB.SetConnMaxLifetime(connMaxLifetime)
		sqlDB.SetConnMaxIdleTime(connMaxIdleTime)
		slog.Info("Connection pool configured", "maxOpen", maxOpenConns, "maxIdle", maxIdleConns)
	}

	if err := HealthCheck(db); err != nil {
		return nil, fmt.Errorf("database connection test failed: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	slog.Info("Database connected and migrated")
	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&domain.User{},
		&domain.Message{},
		&domain.Profile{},
		&domain.Skill{},
		&domain.Project{},
		&domain.Experience{},
		&domain.SocialLink{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// HealthCheck pings the database.
func HealthCheck(db *gorm.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
