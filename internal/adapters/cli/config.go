package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rtsops/reinforce/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage Reinforce configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (REINFORCE_* prefix)
2. Config file (config.yaml)
3. Default values

Examples:
  reinforce config show`,
	}

	cmd.AddCommand(newConfigShowCommand())

	return cmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long: `Display the configuration the daemon would start with.

Example:
  reinforce config show`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig("")
			if err != nil {
				fmt.Printf("Warning: Failed to load config: %v\n", err)
				fmt.Println("Using default configuration.")
				cfg = config.LoadConfigOrDefault("")
			}

			fmt.Println("Reinforce Configuration")
			fmt.Println("=======================")

			fmt.Println("Database:")
			fmt.Printf("  Type:            %s\n", cfg.Database.Type)
			if cfg.Database.Type == "postgres" {
				if cfg.Database.URL != "" {
					fmt.Printf("  URL:             %s\n", maskDatabaseURL(cfg.Database.URL))
				} else {
					fmt.Printf("  Host:            %s:%d\n", cfg.Database.Host, cfg.Database.Port)
					fmt.Printf("  Database:        %s\n", cfg.Database.Name)
				}
			}
			if cfg.Database.Type == "sqlite" {
				fmt.Printf("  Path:            %s\n", cfg.Database.Path)
			}

			fmt.Println("\nDaemon:")
			fmt.Printf("  Engine Socket:   %s\n", cfg.Daemon.EngineSocket)
			fmt.Printf("  Control Socket:  %s\n", cfg.Daemon.ControlSocket)
			fmt.Printf("  PID File:        %s\n", cfg.Daemon.PIDFile)
			fmt.Printf("  Shutdown:        %s\n", cfg.Daemon.ShutdownTimeout)

			fmt.Println("\nReplacement:")
			fmt.Printf("  Strategies:      %s\n", strings.Join(cfg.Replacement.Strategies, ", "))
			fmt.Printf("  Capture Depth:   %d\n", cfg.Replacement.CaptureDepth)
			fmt.Printf("  Order Rate:      %.0f/s (burst %d)\n", cfg.Replacement.OrderRate, cfg.Replacement.OrderBurst)
			if cfg.Keybinds.Path != "" {
				fmt.Printf("  Keybinds:        %s\n", cfg.Keybinds.Path)
			}

			fmt.Println("\nSweeper:")
			fmt.Printf("  Enabled:         %s\n", yesNo(cfg.Sweeper.Enabled))
			if cfg.Sweeper.Enabled {
				fmt.Printf("  Schedule:        %s\n", cfg.Sweeper.Schedule)
			}

			fmt.Println("\nMetrics:")
			fmt.Printf("  Enabled:         %s\n", yesNo(cfg.Metrics.Enabled))
			if cfg.Metrics.Enabled {
				fmt.Printf("  Endpoint:        http://%s:%d%s\n", cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)
			}

			fmt.Println("\nLogging:")
			fmt.Printf("  Level:           %s\n", cfg.Logging.Level)
			fmt.Printf("  Format:          %s\n", cfg.Logging.Format)
			fmt.Printf("  Output:          %s\n", cfg.Logging.Output)
			if cfg.Logging.Output == "file" {
				fmt.Printf("  File:            %s\n", cfg.Logging.FilePath)
			}

			return nil
		},
	}

	return cmd
}

// maskDatabaseURL hides the password portion of a connection URL
func maskDatabaseURL(url string) string {
	atIdx := strings.LastIndex(url, "@")
	if atIdx == -1 {
		return url
	}
	schemeIdx := strings.Index(url, "://")
	if schemeIdx == -1 {
		return url
	}
	credentials := url[schemeIdx+3 : atIdx]
	colonIdx := strings.Index(credentials, ":")
	if colonIdx == -1 {
		return url
	}
	return url[:schemeIdx+3] + credentials[:colonIdx] + ":****" + url[atIdx:]
}
