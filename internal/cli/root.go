package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tradelens/internal/config"
	"tradelens/internal/logging"
	"tradelens/internal/store"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  store.RunStore
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if cfg.Cache.Enabled {
		runStore, err := store.NewSQLiteStore(cfg.Cache.Path)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize run store, history disabled")
		} else {
			app.Store = runStore
			logger.Debug().Str("path", cfg.Cache.Path).Msg("Run store initialized")
		}
	}

	rootCmd := &cobra.Command{
		Use:   "tradelens",
		Short: "tradelens - trade-signal analytics CLI",
		Long: `tradelens ingests tabular trade-signal records and answers two questions:
what is the reference performance of the approach, and how does performance
change under an arbitrary combination of numeric filters.

Every evaluation collapses raw signal rows to one first-trigger row per
ticker-date, applies the stop-loss and efficiency adjustments, and reports a
25-metric summary plus fixed-stake and compounded-Kelly equity curves.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/tradelens)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newColumnsCmd(app))
	rootCmd.AddCommand(newAnalyzeCmd(app))
	rootCmd.AddCommand(newFilterCmd(app))
	rootCmd.AddCommand(newReportCmd(app))
	rootCmd.AddCommand(newRunsCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"version": Version})
			} else {
				output.Printf("tradelens v%s\n", Version)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Adjustment")
	output.Printf("  Stop Loss:        %.1f%%\n", cfg.Adjustment.StopLoss)
	output.Printf("  Efficiency:       %.1f%%\n", cfg.Adjustment.Efficiency)
	output.Println()

	output.Bold("Sizing")
	output.Printf("  Kelly Fraction:   %.2f\n", cfg.Sizing.KellyFraction)
	output.Printf("  Stake:            %.2f\n", cfg.Sizing.Stake)
	output.Printf("  Starting Capital: %.2f\n", cfg.Sizing.StartingCapital)
	output.Println()

	output.Bold("Cache")
	output.Printf("  Enabled:          %v\n", cfg.Cache.Enabled)
	output.Printf("  Path:             %s\n", cfg.Cache.Path)
	output.Println()

	output.Bold("Output")
	output.Printf("  Color:            %v\n", cfg.Output.ColorEnabled)
	output.Printf("  Breakeven Wins:   %v\n", cfg.Output.BreakevenWins)
}
