package cli

import (
	"context"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"tradelens/internal/engine"
	apperrors "tradelens/internal/errors"
	"tradelens/internal/store"
)

func newRunsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Browse persisted evaluation runs",
		Long:  "Lists, inspects and clears the local history of evaluation runs.",
	}
	cmd.AddCommand(newRunsListCmd(app))
	cmd.AddCommand(newRunsShowCmd(app))
	cmd.AddCommand(newRunsClearCmd(app))
	return cmd
}

func requireStore(app *App, output *Output) error {
	if app.Store == nil {
		output.Error("Run history is disabled (cache.enabled = false or store init failed)")
		return apperrors.ErrDatabaseError
	}
	return nil
}

func storeContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

func newRunsListCmd(app *App) *cobra.Command {
	var (
		limit  int
		kind   string
		source string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app, output); err != nil {
				return err
			}
			ctx, cancel := storeContext()
			defer cancel()

			runs, err := app.Store.ListRuns(ctx, store.RunFilter{
				Source: source,
				Kind:   kind,
				Limit:  limit,
			})
			if err != nil {
				output.Error("Failed to list runs: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(runs)
			}
			if len(runs) == 0 {
				output.Info("No runs recorded yet")
				return nil
			}

			table := NewTable(output, "ID", "WHEN", "KIND", "SOURCE", "TRADES", "WIN RATE", "KELLY")
			for _, r := range runs {
				table.AddRow(
					cast.ToString(r.ID),
					r.CreatedAt.Local().Format("2006-01-02 15:04"),
					r.Kind,
					r.Source,
					cast.ToString(r.ResolvedRows),
					FormatOptionalPercent(r.Metrics.WinRate),
					FormatOptionalPercent(r.Metrics.Kelly),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum runs to list")
	cmd.Flags().StringVar(&kind, "kind", "", "filter by kind (baseline or filtered)")
	cmd.Flags().StringVar(&source, "source", "", "filter by source file")
	return cmd
}

func newRunsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a single run in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app, output); err != nil {
				return err
			}
			id, err := cast.ToInt64E(args[0])
			if err != nil {
				output.Error("Invalid run id %q", args[0])
				return apperrors.Wrapf(apperrors.ErrDataNotFound, "run id %q", args[0])
			}
			ctx, cancel := storeContext()
			defer cancel()

			run, err := app.Store.GetRun(ctx, id)
			if err != nil {
				output.Error("Failed to load run %d: %v", id, err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(run)
			}
			showRun(output, run)
			return nil
		},
	}
}

func showRun(output *Output, run *store.Run) {
	output.Bold("Run #%d — %s (%s)", run.ID, run.Source, run.Kind)
	output.Dim("  recorded %s", run.CreatedAt.Local().Format(time.RFC1123))
	output.Printf("  stop %.1f%%, efficiency %.1f%%, kelly fraction %.2f\n",
		run.Params.StopLoss, run.Params.Efficiency, run.Sizing.KellyFraction)
	for _, f := range run.Filters {
		output.Dim("  where %s %s [%g, %g]", f.Column, f.Operator, f.MinVal, f.MaxVal)
	}
	if !run.DateRange.IsAll() {
		output.Dim("  dates %s .. %s", fmtDateBound(run.DateRange.Start), fmtDateBound(run.DateRange.End))
	}
	output.Println()

	// The full curves are not persisted, only their summaries on the
	// metrics snapshot; that is enough for the metric view.
	ev := &engine.Evaluation{
		Metrics:      run.Metrics,
		ResolvedRows: run.ResolvedRows,
		Flags:        run.Flags,
	}
	printMetrics(output, ev)
	printFlags(output, ev)
}

func newRunsClearCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all persisted runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app, output); err != nil {
				return err
			}
			if !yes {
				output.Warning("Refusing to clear without --yes")
				return nil
			}
			ctx, cancel := storeContext()
			defer cancel()

			if err := app.Store.Clear(ctx); err != nil {
				output.Error("Failed to clear runs: %v", err)
				return err
			}
			output.Success("Run history cleared")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}
