// Package cli provides the command-line interface for the bridge.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ChardPeter/chaddybot-bridge/internal/config"
	"github.com/ChardPeter/chaddybot-bridge/internal/journal"
	"github.com/ChardPeter/chaddybot-bridge/internal/llm"
	"github.com/ChardPeter/chaddybot-bridge/internal/logging"
	"github.com/ChardPeter/chaddybot-bridge/internal/security"
)

// Version information
const (
	Version   = "0.3.0"
	BuildDate = "2025-11-30"
)

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	ConfigDir string
	Logger    zerolog.Logger
	Journal   *journal.Store
	Completer llm.Completer
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, configDir string, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config:    cfg,
		ConfigDir: configDir,
		Logger:    logger,
	}

	// The provider client is built even without a credential so the
	// server can keep serving liveness while decisions fail fast.
	app.Completer = llm.NewClient(llm.ClientConfig{
		APIKey:  cfg.Provider.APIKey,
		BaseURL: cfg.Provider.BaseURL,
		Model:   cfg.Provider.Model,
		Timeout: cfg.Server.ClientDeadline(),
	})
	if !cfg.HasProviderCredential() {
		logger.Debug().Msg("no provider credential configured")
	}

	if cfg.Journal.Enabled {
		store, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to open journal, decisions will not be recorded")
		} else {
			app.Journal = store
			logger.Debug().Str("path", cfg.Journal.Path).Msg("journal opened")
		}
	}

	rootCmd := &cobra.Command{
		Use:   "chaddybot",
		Short: "Chaddybot Bridge - LLM trade decisions over HTTP",
		Long: `Chaddybot Bridge turns free-form market context into structured trade
decisions by consulting an LLM provider and normalizing whatever comes back.

It serves a small authenticated HTTP API for expert advisors and ships a
one-shot mode for poking at the pipeline from the terminal.

Use 'chaddybot help <command>' for more information about a command.
Use 'chaddybot examples' to see common workflows.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Handle debug flag
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/chaddybot)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	// Add all command groups
	addCoreCommands(rootCmd, app)
	addServeCommands(rootCmd, app)
	addDecideCommands(rootCmd, app)
	addJournalCommands(rootCmd, app)
	addHelpCommands(rootCmd, app)

	return rootCmd
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Chaddybot Bridge v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage bridge configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration with credentials masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(maskedConfig(app.Config))
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write an annotated configuration template",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			path, err := config.WriteTemplate(app.ConfigDir)
			if err != nil {
				output.Error("Failed to write template: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]string{"path": path})
			}
			output.Success("✓ Wrote %s", path)
			output.Dim("Fill in the shared secret and provider key, then run 'chaddybot config validate'.")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": app.ConfigDir})
			} else {
				output.Println(app.ConfigDir)
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if !app.Config.HasSharedSecret() {
				output.Warning("No shared secret set, every decision request will be rejected.")
			}
			if !app.Config.HasProviderCredential() {
				output.Warning("No provider credential set, decisions will fall back to HOLD.")
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Server")
	output.Printf("  Port:            %d\n", cfg.Server.Port)
	output.Printf("  Shared Secret:   %s\n", security.MaskCredential(cfg.Server.SharedSecret))
	output.Printf("  Deadline:        %s\n", FormatDuration(cfg.Server.Deadline()))
	output.Printf("  Client Deadline: %s\n", FormatDuration(cfg.Server.ClientDeadline()))
	output.Println()

	output.Bold("Provider")
	output.Printf("  Model:           %s\n", cfg.Provider.Model)
	output.Printf("  API Key:         %s\n", security.MaskCredential(cfg.Provider.APIKey))
	if cfg.Provider.BaseURL != "" {
		output.Printf("  Base URL:        %s\n", cfg.Provider.BaseURL)
	}
	output.Printf("  Prompt Variant:  %s\n", cfg.Provider.PromptVariant)
	output.Println()

	output.Bold("Journal")
	output.Printf("  Enabled:         %v\n", cfg.Journal.Enabled)
	output.Printf("  Path:            %s\n", cfg.Journal.Path)
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:           %s\n", cfg.Log.Level)
	if cfg.Log.File != "" {
		output.Printf("  File:            %s\n", cfg.Log.File)
	}

	return nil
}

// maskedConfig is the JSON shape of config show. Credentials never
// leave the process unmasked.
func maskedConfig(cfg *config.Config) map[string]any {
	return map[string]any{
		"server": map[string]any{
			"port":             cfg.Server.Port,
			"shared_secret":    security.MaskCredential(cfg.Server.SharedSecret),
			"deadline_seconds": cfg.Server.DeadlineSeconds,
		},
		"provider": map[string]any{
			"model":          cfg.Provider.Model,
			"api_key":        security.MaskCredential(cfg.Provider.APIKey),
			"base_url":       cfg.Provider.BaseURL,
			"prompt_variant": cfg.Provider.PromptVariant,
		},
		"journal": map[string]any{
			"enabled": cfg.Journal.Enabled,
			"path":    cfg.Journal.Path,
		},
		"log": map[string]any{
			"level": cfg.Log.Level,
			"file":  cfg.Log.File,
		},
	}
}
