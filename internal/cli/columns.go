package cli

import (
	"github.com/spf13/cobra"

	"tradelens/internal/engine"
)

func newColumnsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "columns <csv-file>",
		Short: "Inspect columns and the detected role mapping",
		Long: `Lists every column in the CSV with its inferred type, and shows which
columns were mapped to the ticker, date, time, gain and MAE roles.

Columns configured in config.toml override auto-detection.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runColumns(app, NewOutput(cmd), args[0])
		},
	}
	return cmd
}

func runColumns(app *App, output *Output, path string) error {
	ds, mapping, err := app.loadDataset(path)
	if err != nil {
		output.Error("Failed to load %s: %v", path, err)
		return err
	}

	roles := map[string]string{}
	for role, col := range map[string]string{
		"ticker":   mapping.Ticker,
		"date":     mapping.Date,
		"time":     mapping.Time,
		"gain":     mapping.GainPct,
		"mae":      mapping.MAEPct,
		"win_loss": mapping.WinLoss,
	} {
		if col != "" {
			roles[col] = role
		}
	}

	if output.IsJSON() {
		type colInfo struct {
			Name    string `json:"name"`
			Numeric bool   `json:"numeric"`
			Role    string `json:"role,omitempty"`
		}
		out := struct {
			Source  string    `json:"source"`
			Rows    int       `json:"rows"`
			Columns []colInfo `json:"columns"`
		}{Source: path, Rows: ds.NumRows()}
		for _, name := range ds.Columns() {
			out.Columns = append(out.Columns, colInfo{
				Name:    name,
				Numeric: ds.IsNumeric(name),
				Role:    roles[name],
			})
		}
		return output.JSON(out)
	}

	output.Bold("Columns in %s (%d rows)", path, ds.NumRows())
	output.Println()

	table := NewTable(output, "COLUMN", "TYPE", "ROLE")
	for _, name := range ds.Columns() {
		kind := "text"
		if ds.IsNumeric(name) {
			kind = "numeric"
		}
		table.AddRow(name, kind, roles[name])
	}
	table.Render()

	if verr := engine.ValidateMapping(ds, mapping); verr != nil {
		output.Println()
		output.Warning("Mapping incomplete: %v", verr)
	}
	return nil
}
