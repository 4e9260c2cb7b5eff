package config

// LoggingConfig selects where and how the daemon writes its log stream.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`

	// Format picks json for machine-readable output or text for
	// watching a terminal session.
	Format string `mapstructure:"format" validate:"required,oneof=json text"`

	// Output routes the stream to stdout, stderr or a file.
	Output string `mapstructure:"output" validate:"required,oneof=stdout stderr file"`

	// FilePath is the log file when Output is "file".
	FilePath string `mapstructure:"file_path"`

	// IncludeCaller adds source file and line to every record.
	IncludeCaller bool `mapstructure:"include_caller"`
}
