package config

// MetricsConfig controls the daemon's Prometheus endpoint.
type MetricsConfig struct {
	// Enabled turns the collectors and the scrape listener on.
	Enabled bool `mapstructure:"enabled"`

	// Port of the scrape listener.
	Port int `mapstructure:"port" validate:"omitempty,min=1024,max=65535"`

	// Host to bind the scrape listener to. Defaults to loopback.
	Host string `mapstructure:"host"`

	// Path of the scrape endpoint. Defaults to /metrics.
	Path string `mapstructure:"path"`
}
