package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	apperrors "github.com/ChardPeter/chaddybot-bridge/internal/errors"
)

// addJournalCommands adds decision journal commands.
func addJournalCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Decision journal",
		Long:  "Review decisions the bridge has served.",
	}

	cmd.AddCommand(newJournalRecentCmd(app))
	cmd.AddCommand(newJournalStatsCmd(app))

	rootCmd.AddCommand(cmd)
}

func newJournalRecentCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show recent decisions",
		Long:  "Display the most recently served decisions, newest first.",
		Example: `  chaddybot journal recent
  chaddybot journal recent --limit 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if app.Journal == nil {
				output.Warning("Journal not available. Enable it in the config or set BRIDGE_JOURNAL_PATH.")
				return apperrors.ErrJournalDisabled
			}

			limit, _ := cmd.Flags().GetInt("limit")
			entries, err := app.Journal.Recent(ctx, limit)
			if err != nil {
				output.Error("Failed to fetch journal entries: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(entries)
			}

			if len(entries) == 0 {
				output.Info("No decisions recorded yet.")
				output.Println()
				output.Dim("Tip: decisions are recorded when the server handles requests or 'decide' runs.")
				return nil
			}

			output.Bold("Recent Decisions")
			table := NewTable(output, "Time", "Decision", "SL", "TP", "Lot", "Outcome", "Reason")
			for _, e := range entries {
				table.AddRow(
					FormatTime(e.RequestedAt),
					output.Decision(e.Decision),
					FormatPrice(e.StopLoss),
					FormatPrice(e.TakeProfit),
					FormatLot(e.LotSize),
					output.Outcome(e.Outcome),
					TruncateString(e.Reason, 40),
				)
			}
			table.Render()

			return nil
		},
	}

	cmd.Flags().Int("limit", 20, "number of entries to show")

	return cmd
}

func newJournalStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show journal statistics",
		Long:  "Summarize decision counts, fallback rate and latency.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if app.Journal == nil {
				output.Warning("Journal not available. Enable it in the config or set BRIDGE_JOURNAL_PATH.")
				return apperrors.ErrJournalDisabled
			}

			stats, err := app.Journal.Stats(ctx)
			if err != nil {
				output.Error("Failed to compute stats: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(stats)
			}

			if stats.Total == 0 {
				output.Info("No decisions recorded yet.")
				return nil
			}

			output.Bold("Journal Statistics")
			output.Printf("  Total Decisions: %d\n", stats.Total)

			fallbackRate := float64(stats.Fallbacks) / float64(stats.Total) * 100
			output.Printf("  Fallbacks:       %d (%.0f%%)\n", stats.Fallbacks, fallbackRate)
			output.Printf("  Avg Latency:     %.0fms\n", stats.AvgDurationMS)
			output.Println()

			output.Bold("By Decision")
			for _, kind := range []string{"BUY", "SELL", "CLOSE", "CLOSE_AND_REVERSE_BUY", "CLOSE_AND_REVERSE_SELL", "HOLD"} {
				count, ok := stats.ByDecision[kind]
				if !ok {
					continue
				}
				share := float64(count) / float64(stats.Total) * 100
				output.Printf("  %-24s %s\n", output.Decision(kind), fmt.Sprintf("%d (%.0f%%)", count, share))
			}

			return nil
		},
	}
}
