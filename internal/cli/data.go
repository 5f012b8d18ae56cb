package cli

import (
	"context"
	"time"

	"tradelens/internal/dataset"
	"tradelens/internal/engine"
	"tradelens/internal/ingest"
	"tradelens/internal/models"
	"tradelens/internal/store"
)

// loadDataset reads the CSV and resolves the column mapping: explicit config
// wins role by role, auto-detection fills the gaps.
func (app *App) loadDataset(path string) (*dataset.Dataset, models.ColumnMapping, error) {
	ds, err := ingest.LoadCSV(path)
	if err != nil {
		return nil, models.ColumnMapping{}, err
	}

	mapping := ingest.DetectMapping(ds)
	overrideMapping(&mapping, app.Config.Columns)

	app.Logger.Debug().
		Str("source", path).
		Int("rows", ds.NumRows()).
		Interface("mapping", mapping).
		Msg("Dataset loaded")
	return ds, mapping, nil
}

func overrideMapping(mapping *models.ColumnMapping, explicit models.ColumnMapping) {
	if explicit.Ticker != "" {
		mapping.Ticker = explicit.Ticker
	}
	if explicit.Date != "" {
		mapping.Date = explicit.Date
	}
	if explicit.Time != "" {
		mapping.Time = explicit.Time
	}
	if explicit.GainPct != "" {
		mapping.GainPct = explicit.GainPct
	}
	if explicit.MAEPct != "" {
		mapping.MAEPct = explicit.MAEPct
	}
	if explicit.WinLoss != "" {
		mapping.WinLoss = explicit.WinLoss
	}
}

// engineOptions builds evaluation options from configuration.
func (app *App) engineOptions() engine.Options {
	return engine.Options{
		WinLoss: app.Config.WinLossSource(),
		Sizing:  app.Config.Sizing,
	}
}

// saveRun persists an evaluation when the run store is available. Failures
// are logged, never fatal: history is a convenience, not part of the result.
func (app *App) saveRun(source, kind string, ev *engine.Evaluation,
	filters []models.FilterCriteria, dates models.DateRange) {

	if app.Store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id, err := app.Store.SaveRun(ctx, &store.Run{
		Source:       source,
		Kind:         kind,
		Params:       app.Config.Adjustment,
		Sizing:       app.Config.Sizing,
		Filters:      filters,
		DateRange:    dates,
		ResolvedRows: ev.ResolvedRows,
		Metrics:      ev.Metrics,
		Flags:        ev.Flags,
	})
	if err != nil {
		app.Logger.Warn().Err(err).Msg("Failed to persist run")
		return
	}
	app.Logger.Debug().Int64("run_id", id).Msg("Run persisted")
}
