package cli

import (
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tradelens/internal/engine"
	"tradelens/internal/logging"
	"tradelens/internal/models"
)

func newAnalyzeCmd(app *App) *cobra.Command {
	var stopLoss, efficiency float64

	cmd := &cobra.Command{
		Use:   "analyze <csv-file>",
		Short: "Compute baseline metrics for a signal file",
		Long: `Resolves the file to one first-trigger trade per ticker-date, applies the
stop-loss and efficiency adjustments, and prints the full metrics summary
with fixed-stake and compounded-Kelly equity digests.

The result is the comparison reference for the filter command.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := app.Config.Adjustment
			if cmd.Flags().Changed("stop-loss") {
				params.StopLoss = stopLoss
			}
			if cmd.Flags().Changed("efficiency") {
				params.Efficiency = efficiency
			}
			return runAnalyze(app, NewOutput(cmd), args[0], params)
		},
	}

	cmd.Flags().Float64Var(&stopLoss, "stop-loss", 0, "stop-loss threshold in percent (overrides config)")
	cmd.Flags().Float64Var(&efficiency, "efficiency", 0, "efficiency haircut in percent (overrides config)")
	return cmd
}

func runAnalyze(app *App, output *Output, path string, params models.AdjustmentParams) error {
	ds, mapping, err := app.loadDataset(path)
	if err != nil {
		output.Error("Failed to load %s: %v", path, err)
		return err
	}

	logger := logging.WithSource(app.Logger, path)
	start := time.Now()

	ev, err := engine.Baseline(ds, mapping, params, app.engineOptions())
	if err != nil {
		output.Error("Analysis failed: %v", err)
		return err
	}
	logging.LogEvaluation(logger, "baseline", ds.NumRows(), ev.ResolvedRows, time.Since(start))

	app.saveRun(path, "baseline", ev, nil, models.DateRange{})

	if output.IsJSON() {
		return output.JSON(ev)
	}

	header := color.New(color.FgCyan, color.Bold)
	header.Printf("Baseline — %s\n", path)
	output.Dim("%d rows -> %d resolved trades (stop %.1f%%, efficiency %.1f%%)",
		ds.NumRows(), ev.ResolvedRows, params.StopLoss, params.Efficiency)
	output.Println()

	printMetrics(output, ev)
	printFlags(output, ev)
	return nil
}

// printMetrics renders the single-column metrics summary.
func printMetrics(output *Output, ev *engine.Evaluation) {
	m := ev.Metrics

	table := NewTable(output, "METRIC", "VALUE")
	table.AddRow("Total Trades", FormatOptionalInt(&m.TotalTrades))
	table.AddRow("Winners", FormatOptionalInt(&m.Winners.Count))
	table.AddRow("Losers", FormatOptionalInt(&m.Losers.Count))
	table.AddRow("Win Rate", FormatOptionalPercent(m.WinRate))
	table.AddRow("Avg Winner", FormatOptionalPercent(m.AvgWinner))
	table.AddRow("Avg Loser", FormatOptionalPercent(m.AvgLoser))
	table.AddRow("Median Winner", FormatOptionalPercent(m.MedianWinner))
	table.AddRow("Median Loser", FormatOptionalPercent(m.MedianLoser))
	table.AddRow("Std Winner", FormatOptionalFloat(m.Winners.Std, 2))
	table.AddRow("Std Loser", FormatOptionalFloat(m.Losers.Std, 2))
	table.AddRow("Reward/Risk", FormatOptionalFloat(m.RewardRisk, 2))
	table.AddRow("Expected Value", FormatOptionalPercent(m.ExpectedValue))
	table.AddRow("Edge", FormatOptionalPercent(m.Edge))
	table.AddRow("Kelly", FormatOptionalPercent(m.Kelly))
	table.AddRow("Fractional Kelly", FormatOptionalPercent(m.FractionalKelly))
	table.AddRow("Expected Growth", FormatOptionalPercent(m.ExpectedGrowth))
	table.AddRow("Max Consec Wins", FormatOptionalInt(m.MaxConsecutiveWins))
	table.AddRow("Max Consec Losses", FormatOptionalInt(m.MaxConsecutiveLosses))
	table.AddRow("Stop-Out Rate", FormatOptionalPercent(m.StopOutRate))
	table.Render()

	if m.FlatStake != nil {
		output.Println()
		output.Bold("Fixed Stake")
		printEquitySummary(output, m.FlatStake)
	}
	if m.CompoundedKelly != nil {
		output.Println()
		output.Bold("Compounded Kelly")
		printEquitySummary(output, m.CompoundedKelly)
	}
}

func printEquitySummary(output *Output, s *engine.EquitySummary) {
	output.Printf("  P&L:              %s\n", output.PnLString(s.PnL, FormatCurrency(s.PnL)))
	output.Printf("  Max Drawdown:     %s\n", FormatCurrency(-s.MaxDrawdown))
	if s.MaxDrawdownPct != nil {
		output.Printf("  Max Drawdown %%:   %.2f%%\n", *s.MaxDrawdownPct)
	}
	output.Printf("  Drawdown Length:  %s\n", FormatDrawdownDuration(s))
}

func printFlags(output *Output, ev *engine.Evaluation) {
	if ev.Flags.NegativeKelly {
		output.Println()
		output.Warning("Negative Kelly: the approach has no positive edge at these parameters")
	}
	if ev.Flags.BlownAccount {
		output.Warning("Compounded equity reached zero; curve frozen from that point")
	}
	if ev.Flags.NotRecovered {
		output.Warning("Equity ends below its running peak (drawdown not recovered)")
	}
}
