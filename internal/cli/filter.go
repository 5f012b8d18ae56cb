package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"tradelens/internal/engine"
	apperrors "tradelens/internal/errors"
	"tradelens/internal/logging"
	"tradelens/internal/models"
	"tradelens/internal/performance"
)

func newFilterCmd(app *App) *cobra.Command {
	var (
		whereSpecs  []string
		fromStr     string
		toStr       string
		noFirstTrig bool
	)

	cmd := &cobra.Command{
		Use:   "filter <csv-file>",
		Short: "Compare filtered performance against the baseline",
		Long: `Evaluates the file twice, unconditionally and under the given criteria,
and prints both metric columns side by side.

Criteria take the form column:operator:min:max, where operator is
"between" (inclusive) or "not_between" (bounds excluded), e.g.

  tradelens filter signals.csv --where "RSI:between:30:70" --where "Volume:not_between:0:100000"

Multiple criteria are combined with AND, up to 10 per invocation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			filters, err := parseWhereSpecs(whereSpecs)
			if err != nil {
				output.Error("%v", err)
				return err
			}
			dates, err := parseDateRange(fromStr, toStr)
			if err != nil {
				output.Error("%v", err)
				return err
			}
			return runFilter(app, output, args[0], filters, dates, !noFirstTrig)
		},
	}

	cmd.Flags().StringArrayVar(&whereSpecs, "where", nil, "filter criterion as column:operator:min:max (repeatable)")
	cmd.Flags().StringVar(&fromStr, "from", "", "start date, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toStr, "to", "", "end date, inclusive (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&noFirstTrig, "no-first-trigger", false, "keep every passing row instead of collapsing to the first trigger per ticker-date")
	return cmd
}

// parseWhereSpecs turns --where flags into criteria. Bound ordering and
// column existence are validated later by the engine against the dataset;
// here only the spec shape is checked.
func parseWhereSpecs(specs []string) ([]models.FilterCriteria, error) {
	var filters []models.FilterCriteria
	for _, spec := range specs {
		parts := strings.Split(spec, ":")
		if len(parts) != 4 {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidRange,
				"criterion %q: want column:operator:min:max", spec)
		}
		op := models.FilterOperator(strings.ToLower(strings.TrimSpace(parts[1])))
		if op != models.Between && op != models.NotBetween {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidRange,
				"criterion %q: operator must be between or not_between", spec)
		}
		minVal, err := cast.ToFloat64E(strings.TrimSpace(parts[2]))
		if err != nil {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidRange,
				"criterion %q: min %q is not numeric", spec, parts[2])
		}
		maxVal, err := cast.ToFloat64E(strings.TrimSpace(parts[3]))
		if err != nil {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidRange,
				"criterion %q: max %q is not numeric", spec, parts[3])
		}
		filters = append(filters, models.FilterCriteria{
			Column:   strings.TrimSpace(parts[0]),
			Operator: op,
			MinVal:   minVal,
			MaxVal:   maxVal,
		})
	}
	return filters, nil
}

func parseDateRange(from, to string) (models.DateRange, error) {
	var r models.DateRange
	var err error
	if from != "" {
		r.Start, err = time.Parse("2006-01-02", from)
		if err != nil {
			return r, apperrors.Wrapf(apperrors.ErrInvalidDate, "--from %q", from)
		}
	}
	if to != "" {
		r.End, err = time.Parse("2006-01-02", to)
		if err != nil {
			return r, apperrors.Wrapf(apperrors.ErrInvalidDate, "--to %q", to)
		}
	}
	if !r.Start.IsZero() && !r.End.IsZero() && r.End.Before(r.Start) {
		return r, apperrors.Wrapf(apperrors.ErrInvalidDate, "--to precedes --from")
	}
	return r, nil
}

func runFilter(app *App, output *Output, path string,
	filters []models.FilterCriteria, dates models.DateRange, firstTrigger bool) error {

	ds, mapping, err := app.loadDataset(path)
	if err != nil {
		output.Error("Failed to load %s: %v", path, err)
		return err
	}

	logger := logging.WithSource(app.Logger, path)
	opts := app.engineOptions()
	params := app.Config.Adjustment

	// The two evaluations share the immutable dataset snapshot, so they run
	// in parallel.
	var (
		baseline, filtered *engine.Evaluation
		baseErr, filtErr   error
	)
	pool := performance.NewWorkerPool(2)
	pool.Start()
	start := time.Now()
	pool.Wait(
		func() {
			baseline, baseErr = engine.Baseline(ds, mapping, params, opts)
		},
		func() {
			filtered, filtErr = engine.Filtered(ds, mapping, params, opts, filters, dates, firstTrigger)
		},
	)
	pool.Stop()

	if baseErr != nil {
		output.Error("Baseline evaluation failed: %v", baseErr)
		return baseErr
	}
	if filtErr != nil {
		output.Error("Filtered evaluation failed: %v", filtErr)
		return filtErr
	}
	logging.LogEvaluation(logger, "filtered", ds.NumRows(), filtered.ResolvedRows, time.Since(start))

	app.saveRun(path, "baseline", baseline, nil, models.DateRange{})
	app.saveRun(path, "filtered", filtered, filters, dates)

	if output.IsJSON() {
		return output.JSON(map[string]*engine.Evaluation{
			"baseline": baseline,
			"filtered": filtered,
		})
	}

	output.Bold("Filter comparison — %s", path)
	for _, f := range filters {
		output.Dim("  %s %s [%g, %g]", f.Column, f.Operator, f.MinVal, f.MaxVal)
	}
	if !dates.IsAll() {
		output.Dim("  dates %s .. %s", fmtDateBound(dates.Start), fmtDateBound(dates.End))
	}
	output.Println()

	printComparison(output, baseline, filtered)

	if filtered.ResolvedRows == 0 {
		output.Println()
		output.Warning("No trades matched the filter; filtered metrics are undefined, not zero")
	}
	printFlags(output, filtered)
	return nil
}

func fmtDateBound(t time.Time) string {
	if t.IsZero() {
		return "*"
	}
	return t.Format("2006-01-02")
}

// printComparison renders the two metric columns side by side.
func printComparison(output *Output, baseline, filtered *engine.Evaluation) {
	b, f := baseline.Metrics, filtered.Metrics

	table := NewTable(output, "METRIC", "BASELINE", "FILTERED")
	add := func(name, bv, fv string) { table.AddRow(name, bv, fv) }

	add("Total Trades", fmt.Sprintf("%d", b.TotalTrades), fmt.Sprintf("%d", f.TotalTrades))
	add("Win Rate", FormatOptionalPercent(b.WinRate), FormatOptionalPercent(f.WinRate))
	add("Avg Winner", FormatOptionalPercent(b.AvgWinner), FormatOptionalPercent(f.AvgWinner))
	add("Avg Loser", FormatOptionalPercent(b.AvgLoser), FormatOptionalPercent(f.AvgLoser))
	add("Median Winner", FormatOptionalPercent(b.MedianWinner), FormatOptionalPercent(f.MedianWinner))
	add("Median Loser", FormatOptionalPercent(b.MedianLoser), FormatOptionalPercent(f.MedianLoser))
	add("Reward/Risk", FormatOptionalFloat(b.RewardRisk, 2), FormatOptionalFloat(f.RewardRisk, 2))
	add("Expected Value", FormatOptionalPercent(b.ExpectedValue), FormatOptionalPercent(f.ExpectedValue))
	add("Edge", FormatOptionalPercent(b.Edge), FormatOptionalPercent(f.Edge))
	add("Kelly", FormatOptionalPercent(b.Kelly), FormatOptionalPercent(f.Kelly))
	add("Fractional Kelly", FormatOptionalPercent(b.FractionalKelly), FormatOptionalPercent(f.FractionalKelly))
	add("Expected Growth", FormatOptionalPercent(b.ExpectedGrowth), FormatOptionalPercent(f.ExpectedGrowth))
	add("Max Consec Wins", FormatOptionalInt(b.MaxConsecutiveWins), FormatOptionalInt(f.MaxConsecutiveWins))
	add("Max Consec Losses", FormatOptionalInt(b.MaxConsecutiveLosses), FormatOptionalInt(f.MaxConsecutiveLosses))
	add("Stop-Out Rate", FormatOptionalPercent(b.StopOutRate), FormatOptionalPercent(f.StopOutRate))
	add("Flat P&L", fmtSummaryPnL(b.FlatStake), fmtSummaryPnL(f.FlatStake))
	add("Flat Max DD", fmtSummaryDD(b.FlatStake), fmtSummaryDD(f.FlatStake))
	add("Kelly P&L", fmtSummaryPnL(b.CompoundedKelly), fmtSummaryPnL(f.CompoundedKelly))
	add("Kelly Max DD", fmtSummaryDD(b.CompoundedKelly), fmtSummaryDD(f.CompoundedKelly))
	table.Render()
}

func fmtSummaryPnL(s *engine.EquitySummary) string {
	if s == nil {
		return Absent
	}
	return FormatCurrency(s.PnL)
}

func fmtSummaryDD(s *engine.EquitySummary) string {
	if s == nil {
		return Absent
	}
	return FormatCurrency(-s.MaxDrawdown)
}
