package config

// ReplacementConfig holds the replacement decision chain and engine command
// pacing configuration
type ReplacementConfig struct {
	// Ordered strategy chain tried on each destruction. The first strategy
	// that produces a replacement wins.
	Strategies []string `mapstructure:"strategies" validate:"required,min=1,dive,oneof=adopt_sibling factory_build"`

	// How many orders to capture per unit when tagging
	CaptureDepth int `mapstructure:"capture_depth" validate:"min=1,max=256"`

	// Engine command pacing (orders and build requests per second)
	OrderRate  float64 `mapstructure:"order_rate" validate:"min=1"`
	OrderBurst int     `mapstructure:"order_burst" validate:"min=1"`
}

// KeybindsConfig points at the optional hotkey profile. An empty path keeps
// the built-in alt+t / alt+u bindings.
type KeybindsConfig struct {
	Path string `mapstructure:"path"`
}

// SweeperConfig holds the periodic reconcile schedule
type SweeperConfig struct {
	// Enable the background reconcile sweep
	Enabled bool `mapstructure:"enabled"`

	// Cron schedule, e.g. "@every 30s"
	Schedule string `mapstructure:"schedule"`
}
