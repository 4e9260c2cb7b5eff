package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rtsops/reinforce/internal/adapters/persistence"
	"github.com/rtsops/reinforce/internal/infrastructure/config"
)

// NewConnection opens the session history store and migrates its schema.
// The daemon is the only writer of this database, so schema ownership
// lives here rather than in an external migration step.
func NewConnection(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := openDialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Type, err)
	}

	// Pool tuning only matters for postgres; sqlite serializes writes
	// through a single file handle regardless.
	if cfg.Type == "postgres" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("configure connection pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(cfg.Pool.MaxOpen)
		sqlDB.SetMaxIdleConns(cfg.Pool.MaxIdle)
		sqlDB.SetConnMaxLifetime(cfg.Pool.MaxLifetime)
	}

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("migrate session schema: %w", err)
	}

	return db, nil
}

// NewTestConnection opens a throwaway in-memory store for tests.
func NewTestConnection() (*gorm.DB, error) {
	return NewConnection(&config.DatabaseConfig{
		Type: "sqlite",
		Path: ":memory:",
	})
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func openDialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Type {
	case "sqlite":
		path := cfg.Path
		if path == "" {
			path = ":memory:"
		}
		return sqlite.Open(path), nil
	case "postgres":
		return postgres.Open(postgresDSN(cfg)), nil
	default:
		// "memory" is handled by the repository factory before this
		// point; it never opens a GORM connection.
		return nil, fmt.Errorf("unsupported database type %q", cfg.Type)
	}
}

// postgresDSN prefers a full connection URL and falls back to the
// individual host fields.
func postgresDSN(cfg *config.DatabaseConfig) string {
	if cfg.URL != "" {
		return cfg.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&persistence.SessionModel{},
		&persistence.JournalEntryModel{},
	)
}
