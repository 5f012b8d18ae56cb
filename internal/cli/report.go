package cli

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"tradelens/internal/engine"
	apperrors "tradelens/internal/errors"
	"tradelens/internal/models"
	"tradelens/internal/report"
)

func newReportCmd(app *App) *cobra.Command {
	var (
		whereSpecs []string
		fromStr    string
		toStr      string
		format     string
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "report <csv-file>",
		Short: "Export an evaluation as Markdown or CSV",
		Long: `Evaluates the file and writes the result as a shareable artifact.

Formats:
  markdown   metric comparison as a Markdown document (default)
  csv        metric comparison as CSV
  equity     baseline equity curves as CSV, one row per resolved trade

When --where or a date bound is given the report carries a filtered column
next to the baseline.`,
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
			return runReport(app, output, args[0], filters, dates, format, outPath)
		},
	}

	cmd.Flags().StringArrayVar(&whereSpecs, "where", nil, "filter criterion as column:operator:min:max (repeatable)")
	cmd.Flags().StringVar(&fromStr, "from", "", "start date, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toStr, "to", "", "end date, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "output format: markdown, csv or equity")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write to file instead of stdout")
	return cmd
}

func runReport(app *App, output *Output, path string,
	filters []models.FilterCriteria, dates models.DateRange,
	format, outPath string) error {

	ds, mapping, err := app.loadDataset(path)
	if err != nil {
		output.Error("Failed to load %s: %v", path, err)
		return err
	}

	opts := app.engineOptions()
	params := app.Config.Adjustment

	baseline, err := engine.Baseline(ds, mapping, params, opts)
	if err != nil {
		output.Error("Baseline evaluation failed: %v", err)
		return err
	}

	comparison := &report.Comparison{
		Source:      path,
		GeneratedAt: time.Now(),
		Baseline:    baseline,
	}
	if len(filters) > 0 || !dates.IsAll() {
		filtered, err := engine.Filtered(ds, mapping, params, opts, filters, dates, true)
		if err != nil {
			output.Error("Filtered evaluation failed: %v", err)
			return err
		}
		comparison.Filtered = filtered
	}

	var body string
	switch format {
	case "markdown", "md":
		body = report.RenderMarkdown(comparison)
	case "csv":
		body, err = report.RenderCSV(comparison)
	case "equity":
		body, err = report.RenderEquityCSV(baseline)
	default:
		err = apperrors.Wrapf(apperrors.ErrConfigInvalid, "unknown report format %q", format)
	}
	if err != nil {
		output.Error("Report rendering failed: %v", err)
		return err
	}

	if outPath == "" {
		output.Println(body)
		return nil
	}
	if err := os.WriteFile(outPath, []byte(body), 0o644); err != nil {
		output.Error("Failed to write %s: %v", outPath, err)
		return err
	}
	app.Logger.Info().Str("path", outPath).Str("format", format).Msg("Report written")
	output.Success("Report written to %s", outPath)
	return nil
}
