package config

import "time"

// DaemonConfig holds the process-level settings of reinforced.
type DaemonConfig struct {
	// EngineSocket is the unix socket the game mod dials.
	EngineSocket string `mapstructure:"engine_socket" validate:"required"`

	// ControlSocket is the unix socket the reinforce CLI dials.
	ControlSocket string `mapstructure:"control_socket" validate:"required"`

	// PIDFile guards against a second daemon claiming the same
	// sockets.
	PIDFile string `mapstructure:"pid_file"`

	// ShutdownTimeout bounds how long a stop signal waits for the
	// active session to wind down.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required"`
}
