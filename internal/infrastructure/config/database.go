package config

import "time"

// DatabaseConfig selects the backing store for session history.
type DatabaseConfig struct {
	// Type is "sqlite", "postgres" or "memory". Memory keeps session
	// history in-process only; it is lost when the daemon exits.
	Type string `mapstructure:"type" validate:"required,oneof=sqlite postgres memory"`

	// URL is a full postgres connection string and wins over the
	// individual fields below when set.
	URL string `mapstructure:"url"`

	// Field-by-field postgres settings, consulted only when URL is
	// empty.
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode" validate:"omitempty,oneof=disable require verify-ca verify-full"`

	// Path of the sqlite file. ":memory:" is accepted for tests.
	Path string `mapstructure:"path"`

	Pool PoolConfig `mapstructure:"pool"`
}

// PoolConfig tunes the postgres connection pool.
type PoolConfig struct {
	MaxOpen     int           `mapstructure:"max_open" validate:"min=1"`
	MaxIdle     int           `mapstructure:"max_idle" validate:"min=1"`
	MaxLifetime time.Duration `mapstructure:"max_lifetime"`
}
