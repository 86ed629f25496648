package cli

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ChardPeter/chaddybot-bridge/internal/bridge"
	"github.com/ChardPeter/chaddybot-bridge/internal/journal"
)

// addDecideCommands adds the one-shot decision command.
func addDecideCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newDecideCmd(app))
}

func newDecideCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decide [context]",
		Short: "Run one decision through the pipeline",
		Long: `Send market context through the decision pipeline once and print the result.

Reads the context from the argument, or from stdin when the argument is "-"
or absent. The decision is recorded in the journal like a served request.`,
		Example: `  chaddybot decide "EURUSD 1.0875, RSI 62, MACD rising"
  cat context.txt | chaddybot decide -
  chaddybot decide --variant scalper "EURUSD spiking on news"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			marketContext, err := readDecideContext(cmd, args)
			if err != nil {
				output.Error("Failed to read context: %v", err)
				return err
			}

			variantName, _ := cmd.Flags().GetString("variant")
			if variantName != "" {
				app.Config.Provider.PromptVariant = variantName
			}

			pipeline, err := app.newPipeline()
			if err != nil {
				output.Error("Failed to build pipeline: %v", err)
				return err
			}

			requestID := uuid.NewString()
			start := time.Now()
			res := pipeline.Decide(cmd.Context(), marketContext, requestID)
			elapsed := time.Since(start)

			if app.Journal != nil {
				recordCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				err := app.Journal.Record(recordCtx, journal.Entry{
					ID:           requestID,
					RequestedAt:  start.UTC(),
					Decision:     string(res.Decision.Decision),
					StopLoss:     res.Decision.StopLoss,
					TakeProfit:   res.Decision.TakeProfit,
					LotSize:      res.Decision.LotSize,
					TrailActive:  res.Decision.TrailActive,
					Reason:       res.Decision.Reason,
					Dialect:      res.Dialect,
					Outcome:      res.Outcome,
					FailureClass: res.Class,
					Model:        pipeline.Model(),
					DurationMS:   elapsed.Milliseconds(),
				})
				if err != nil {
					output.Warning("Journal write failed: %v", err)
				}
			}

			if output.IsJSON() {
				return output.JSON(res.Decision)
			}

			printDecision(output, res, elapsed)
			return nil
		},
	}

	cmd.Flags().String("variant", "", "prompt variant (structured, lines, scalper, swing)")

	return cmd
}

// readDecideContext takes the context from the argument or stdin.
func readDecideContext(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func printDecision(output *Output, res bridge.Result, elapsed time.Duration) {
	d := res.Decision

	output.Bold("Trade Decision")
	output.Printf("  Decision:    %s\n", output.Decision(string(d.Decision)))
	output.Printf("  Stop Loss:   %s\n", FormatPrice(d.StopLoss))
	output.Printf("  Take Profit: %s\n", FormatPrice(d.TakeProfit))
	output.Printf("  Lot Size:    %s\n", FormatLot(d.LotSize))
	output.Printf("  Trailing:    %v\n", d.TrailActive)
	output.Printf("  Reason:      %s\n", d.Reason)
	output.Println()

	if res.Outcome == "fallback" {
		output.Warning("Fallback decision (%s failure)", res.Class)
	}
	if res.Dialect != "" {
		output.Dim("Dialect: %s  Elapsed: %s", res.Dialect, FormatDuration(elapsed))
	} else {
		output.Dim("Elapsed: %s", FormatDuration(elapsed))
	}
}
