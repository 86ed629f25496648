package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// addHelpCommands adds help and documentation commands.
func addHelpCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newCommandsCmd(app))
	rootCmd.AddCommand(newExamplesCmd(app))
	rootCmd.AddCommand(newQuickstartCmd(app))
}

func newCommandsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List all commands by category",
		Long:  "Display all available commands organized by category.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			output.Bold("Chaddybot Bridge Commands")
			output.Println()

			categories := []struct {
				name     string
				commands []struct {
					cmd  string
					desc string
				}
			}{
				{
					name: "Server",
					commands: []struct {
						cmd  string
						desc string
					}{
						{"serve", "Run the bridge HTTP server"},
						{"serve --lite", "Run the compact /api surface"},
						{"serve --port <n>", "Override the listen port"},
					},
				},
				{
					name: "Decisions",
					commands: []struct {
						cmd  string
						desc string
					}{
						{"decide <context>", "One-shot decision from the terminal"},
						{"decide -", "Read market context from stdin"},
						{"decide --variant <name>", "Pick a prompt variant"},
					},
				},
				{
					name: "Journal",
					commands: []struct {
						cmd  string
						desc string
					}{
						{"journal recent", "Show recent decisions"},
						{"journal stats", "Decision counts and latency"},
					},
				},
				{
					name: "Configuration",
					commands: []struct {
						cmd  string
						desc string
					}{
						{"config init", "Write an annotated config template"},
						{"config show", "Show config with credentials masked"},
						{"config validate", "Validate the configuration"},
						{"config path", "Show the config directory"},
					},
				},
				{
					name: "Help",
					commands: []struct {
						cmd  string
						desc string
					}{
						{"help <command>", "Detailed help"},
						{"commands", "List all commands"},
						{"examples", "Common workflows"},
						{"quickstart", "New user guide"},
						{"version", "Version information"},
					},
				},
			}

			for _, cat := range categories {
				output.Bold(cat.name)
				for _, c := range cat.commands {
					output.Printf("  %-30s %s\n", output.Cyan(c.cmd), c.desc)
				}
				output.Println()
			}

			output.Dim("Use 'chaddybot help <command>' for detailed help on any command")

			return nil
		},
	}
}

func newExamplesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "examples",
		Short: "Show common workflow examples",
		Long:  "Display examples of common bridge workflows.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			output.Bold("Common Workflow Examples")
			output.Println()

			examples := []struct {
				title    string
				commands []string
			}{
				{
					title: "First Run",
					commands: []string{
						"chaddybot config init           # Write a config template",
						"chaddybot config validate       # Check the configuration",
						"chaddybot serve                 # Start the bridge",
					},
				},
				{
					title: "Poke the Pipeline",
					commands: []string{
						`chaddybot decide "EURUSD 1.0875, RSI 62, MACD rising"`,
						"cat context.txt | chaddybot decide -",
						`chaddybot decide --variant scalper "EURUSD spiking on news"`,
						`chaddybot decide --json "EURUSD drifting" # Raw response body`,
					},
				},
				{
					title: "Call the API",
					commands: []string{
						`curl -s -X POST localhost:8090/decision \`,
						`  -H 'X-Bridge-Key: <secret>' \`,
						`  -d '{"market_context":"EURUSD 1.0875, RSI 62"}'`,
						"curl -s localhost:8090/healthz   # No key needed",
					},
				},
				{
					title: "Review Decisions",
					commands: []string{
						"chaddybot journal recent         # Latest decisions",
						"chaddybot journal recent --limit 50",
						"chaddybot journal stats          # Fallback rate, latency",
					},
				},
				{
					title: "Run Next to the EA",
					commands: []string{
						"chaddybot serve --lite --port 8091  # Compact surface",
						"curl -s localhost:8091/api/health",
					},
				},
			}

			for _, ex := range examples {
				output.Bold(ex.title)
				for _, c := range ex.commands {
					parts := strings.SplitN(c, "#", 2)
					if len(parts) == 2 {
						output.Printf("  %s %s\n", output.Cyan(strings.TrimSpace(parts[0])), output.DimText(strings.TrimSpace(parts[1])))
					} else {
						output.Printf("  %s\n", output.Cyan(c))
					}
				}
				output.Println()
			}

			return nil
		},
	}
}

func newQuickstartCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "quickstart",
		Short: "New user guide",
		Long:  "Step-by-step guide for new users.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			output.Bold("Chaddybot Bridge - Quick Start Guide")
			output.Println()

			steps := []struct {
				step  int
				title string
				desc  string
				cmd   string
			}{
				{
					step:  1,
					title: "Write the Config Template",
					desc:  "Creates bridge.toml in the config directory.",
					cmd:   "chaddybot config init",
				},
				{
					step:  2,
					title: "Set the Shared Secret",
					desc:  "Pick a secret the expert advisor will send in X-Bridge-Key.",
					cmd:   "Edit bridge.toml: server.shared_secret = \"...\"",
				},
				{
					step:  3,
					title: "Set the Provider Key",
					desc:  "The OpenAI API key used for completions.",
					cmd:   "export OPENAI_API_KEY=sk-...",
				},
				{
					step:  4,
					title: "Validate",
					desc:  "Catches bad ports, deadlines and unknown prompt variants.",
					cmd:   "chaddybot config validate",
				},
				{
					step:  5,
					title: "Try a Decision",
					desc:  "Run the pipeline once without the server.",
					cmd:   "chaddybot decide \"EURUSD 1.0875, RSI 62, MACD rising\"",
				},
				{
					step:  6,
					title: "Start the Server",
					desc:  "Point the expert advisor at this port.",
					cmd:   "chaddybot serve",
				},
			}

			for _, s := range steps {
				output.Printf("%s Step %d: %s\n", output.Cyan("→"), s.step, output.BoldText(s.title))
				output.Printf("  %s\n", s.desc)
				output.Printf("  %s\n\n", output.DimText(s.cmd))
			}

			output.Bold("Configuration")
			output.Println()
			output.Printf("  %s - All bridge settings, env vars override\n", output.Cyan("bridge.toml"))
			output.Printf("  %s - Provider credential (never stored in the journal)\n", output.Cyan("OPENAI_API_KEY"))
			output.Println()

			output.Bold("Getting Help")
			output.Println()
			output.Printf("  %s - List all commands\n", output.Cyan("chaddybot commands"))
			output.Printf("  %s - Common workflows\n", output.Cyan("chaddybot examples"))
			output.Printf("  %s - Help for any command\n", output.Cyan("chaddybot help <command>"))
			output.Println()

			output.Bold("Important Notes")
			output.Println()
			output.Printf("  %s A missing provider key serves HOLD fallbacks, not errors\n", output.Yellow("⚠"))
			output.Printf("  %s Keep the shared secret out of EA source control\n", output.Yellow("⚠"))
			output.Printf("  %s The bridge never retries the provider on a failed call\n", output.Yellow("⚠"))

			return nil
		},
	}
}
