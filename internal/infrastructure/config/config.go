package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config carries every tunable of the reinforced daemon. Each section
// maps to a top-level key in config.yaml.
type Config struct {
	Database    DatabaseConfig    `mapstructure:"database"`
	Daemon      DaemonConfig      `mapstructure:"daemon"`
	Replacement ReplacementConfig `mapstructure:"replacement"`
	Keybinds    KeybindsConfig    `mapstructure:"keybinds"`
	Sweeper     SweeperConfig     `mapstructure:"sweeper"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// LoadConfig resolves configuration in precedence order: REINFORCE_*
// environment variables beat the config file, which beats built-in
// defaults. A missing file is fine; a malformed or invalid one is not.
func LoadConfig(configPath string) (*Config, error) {
	// A .env in the working directory is a convenience for development
	// runs; absence is not an error.
	_ = godotenv.Load()

	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/reinforce")
	}

	v.SetEnvPrefix("REINFORCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	// DATABASE_URL is honored without the REINFORCE_ prefix so the
	// daemon picks up the connection string hosting environments
	// already export.
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		v.Set("database.url", dbURL)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	SetDefaults(&cfg)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadConfigOrDefault swallows load errors and falls back to the
// built-in defaults. The config CLI command uses it to show something
// useful even when the file on disk is broken.
func LoadConfigOrDefault(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		cfg = &Config{}
		SetDefaults(cfg)
	}
	return cfg
}

// MustLoadConfig is for the daemon entrypoint, where starting with a
// half-applied configuration is worse than not starting.
func MustLoadConfig(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		panic(fmt.Sprintf("load configuration: %v", err))
	}
	return cfg
}
