package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ChardPeter/chaddybot-bridge/internal/auth"
	"github.com/ChardPeter/chaddybot-bridge/internal/bridge"
	"github.com/ChardPeter/chaddybot-bridge/internal/lite"
	"github.com/ChardPeter/chaddybot-bridge/internal/parser"
	"github.com/ChardPeter/chaddybot-bridge/internal/prompt"
)

// addServeCommands adds the HTTP server command.
func addServeCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newServeCmd(app))
}

func newServeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bridge HTTP server",
		Long: `Serve the decision API over HTTP.

The full server exposes POST /decision, GET /healthz and GET /metrics and
records served decisions in the journal. With --lite a smaller surface is
served under /api, without journal or metrics scrape endpoint.`,
		Example: `  chaddybot serve
  chaddybot serve --port 9090
  chaddybot serve --lite`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration invalid: %v", err)
				return err
			}

			port, _ := cmd.Flags().GetInt("port")
			if port > 0 {
				app.Config.Server.Port = port
			}
			liteMode, _ := cmd.Flags().GetBool("lite")

			pipeline, err := app.newPipeline()
			if err != nil {
				output.Error("Failed to build pipeline: %v", err)
				return err
			}
			gate := auth.NewGate(app.Config.Server.SharedSecret, app.Logger)
			if !gate.Configured() {
				output.Warning("No shared secret set, every decision request will be rejected.")
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if app.Journal != nil {
				defer app.Journal.Close()
			}

			if liteMode {
				output.Info("Lite bridge listening on :%d (model %s)", app.Config.Server.Port, pipeline.Model())
				return lite.NewServer(pipeline, gate, app.Logger).Run(ctx, app.Config.Server.Port)
			}

			output.Info("Bridge listening on :%d (model %s)", app.Config.Server.Port, pipeline.Model())
			return bridge.NewServer(app.Config, pipeline, gate, app.Journal, app.Logger).Run(ctx)
		},
	}

	cmd.Flags().Int("port", 0, "listen port (overrides config)")
	cmd.Flags().Bool("lite", false, "serve the compact /api surface")

	return cmd
}

// newPipeline assembles the decision pipeline from the loaded config.
func (app *App) newPipeline() (*bridge.Pipeline, error) {
	variant, err := prompt.Lookup(app.Config.Provider.PromptVariant)
	if err != nil {
		return nil, err
	}
	return bridge.NewPipeline(
		app.Completer,
		parser.New(app.Logger),
		variant,
		app.Config.Server.Deadline(),
		app.Logger,
	), nil
}
