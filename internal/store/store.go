// Package store provides run-history persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"tradelens/internal/engine"
	"tradelens/internal/models"
)

// Run is one persisted evaluation: what was evaluated, with which knobs, and
// the resulting metrics snapshot. The full equity curves are not persisted;
// they are cheap to recompute from the source file.
type Run struct {
	ID           int64
	CreatedAt    time.Time
	Source       string
	Kind         string // "baseline" or "filtered"
	Params       models.AdjustmentParams
	Sizing       models.SizingParams
	Filters      []models.FilterCriteria
	DateRange    models.DateRange
	ResolvedRows int
	Metrics      engine.TradingMetrics
	Flags        engine.Flags
}

// RunFilter narrows ListRuns results.
type RunFilter struct {
	Source string
	Kind   string
	Limit  int
}

// RunStore defines the interface for evaluation-run persistence.
type RunStore interface {
	SaveRun(ctx context.Context, run *Run) (int64, error)
	GetRun(ctx context.Context, id int64) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]Run, error)
	Clear(ctx context.Context) error
	Close() error
}
