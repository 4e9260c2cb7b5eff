package config

import "time"

// SetDefaults fills every unset field with a value the daemon can run
// on out of the box.
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "/tmp/reinforce.db"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "reinforce"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "reinforce"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Daemon defaults
	if cfg.Daemon.EngineSocket == "" {
		cfg.Daemon.EngineSocket = "/tmp/reinforce-engine.sock"
	}
	if cfg.Daemon.ControlSocket == "" {
		cfg.Daemon.ControlSocket = "/tmp/reinforce-control.sock"
	}
	if cfg.Daemon.PIDFile == "" {
		cfg.Daemon.PIDFile = "/tmp/reinforced.pid"
	}
	if cfg.Daemon.ShutdownTimeout == 0 {
		cfg.Daemon.ShutdownTimeout = 10 * time.Second
	}

	// Replacement defaults
	if len(cfg.Replacement.Strategies) == 0 {
		cfg.Replacement.Strategies = []string{"adopt_sibling", "factory_build"}
	}
	if cfg.Replacement.CaptureDepth == 0 {
		cfg.Replacement.CaptureDepth = 32
	}
	if cfg.Replacement.OrderRate == 0 {
		cfg.Replacement.OrderRate = 30
	}
	if cfg.Replacement.OrderBurst == 0 {
		cfg.Replacement.OrderBurst = 60
	}

	// Sweeper defaults
	if cfg.Sweeper.Schedule == "" {
		cfg.Sweeper.Schedule = "@every 30s"
	}

	// Metrics defaults
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 2112
	}
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "127.0.0.1"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}
