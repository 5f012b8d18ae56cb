// Package engine implements the trade-resolution and analytics pipeline:
// adjustment, first-trigger resolution, bounds filtering, the 25-metric
// summary and the two equity curves. Every entry point is a pure function of
// an immutable dataset snapshot plus plain configuration values; baseline and
// filtered evaluations of the same snapshot may run concurrently.
package engine

import (
	"tradelens/internal/dataset"
	"tradelens/internal/models"
)

// Options carries the evaluation knobs that are not adjustment parameters.
type Options struct {
	WinLoss models.WinLossSource
	Sizing  models.SizingParams
}

// DefaultOptions returns derived win/loss classification with breakeven as
// loss and stock sizing.
func DefaultOptions() Options {
	return Options{
		WinLoss: models.DerivedWinLoss(false),
		Sizing:  models.DefaultSizingParams(),
	}
}

// Flags surfaces numeric-edge conditions as explicit status, never as errors;
// the evaluation always completes with a well-typed result.
type Flags struct {
	NegativeKelly bool `json:"negative_kelly,omitempty"`
	BlownAccount  bool `json:"blown_account,omitempty"`
	NotRecovered  bool `json:"not_recovered,omitempty"`
}

// Evaluation is the complete result of one engine run.
type Evaluation struct {
	Metrics      TradingMetrics `json:"metrics"`
	FlatStake    EquityCurve    `json:"flat_stake"`
	Kelly        EquityCurve    `json:"kelly"`
	ResolvedRows int            `json:"resolved_rows"`
	Flags        Flags          `json:"flags"`
}

// Baseline resolves the unconditional first-trigger dataset and computes its
// metrics and equity curves. It is the invariant comparison reference: any
// filtered evaluation over the same params is directly comparable.
func Baseline(ds *dataset.Dataset, mapping models.ColumnMapping,
	params models.AdjustmentParams, opts Options) (*Evaluation, error) {

	if err := ValidateMapping(ds, mapping); err != nil {
		return nil, err
	}
	trades, err := bindTrades(ds, mapping)
	if err != nil {
		return nil, err
	}

	resolved := resolveFirstTriggers(adjustAll(trades, params), nil)
	return evaluate(resolved, params, opts), nil
}

// Filtered applies the criteria list and date range, resolves first triggers
// against the combined predicate, and computes metrics and equity. When
// firstTrigger is false the per-group collapse is skipped and every row
// passing the predicate survives in source order.
//
// Configuration problems (mapping, filters) abort before any row is touched;
// an impossible-but-valid filter simply yields zero resolved rows and an
// all-absent metrics snapshot.
func Filtered(ds *dataset.Dataset, mapping models.ColumnMapping,
	params models.AdjustmentParams, opts Options,
	filters []models.FilterCriteria, dates models.DateRange,
	firstTrigger bool) (*Evaluation, error) {

	if err := ValidateMapping(ds, mapping); err != nil {
		return nil, err
	}
	if err := ValidateFilters(ds, filters); err != nil {
		return nil, err
	}
	trades, err := bindTrades(ds, mapping)
	if err != nil {
		return nil, err
	}

	mask, err := ApplyFilters(ds, filters)
	if err != nil {
		return nil, err
	}
	adjusted := adjustAll(trades, params)

	keep := make([]bool, ds.NumRows())
	for _, t := range adjusted {
		keep[t.Row] = mask[t.Row] && dates.Contains(t.Date)
	}

	var resolved []models.AdjustedTrade
	if firstTrigger {
		resolved = resolveFirstTriggers(adjusted, func(row int) bool { return keep[row] })
	} else {
		for _, t := range adjusted {
			if keep[t.Row] {
				resolved = append(resolved, t)
			}
		}
	}
	return evaluate(resolved, params, opts), nil
}

// evaluate computes the shared back half of both entry points.
func evaluate(resolved []models.AdjustedTrade, params models.AdjustmentParams, opts Options) *Evaluation {
	metrics := ComputeMetrics(resolved, opts.WinLoss, params, opts.Sizing)

	flat := FixedStakeCurve(resolved, opts.Sizing.Stake)
	kelly := EquityCurve{Recovered: true}

	if len(resolved) > 0 {
		metrics.FlatStake = flat.Summary()
		if bet, ok := metrics.betFraction(opts.Sizing); ok {
			kelly = CompoundedKellyCurve(resolved, opts.Sizing.StartingCapital, bet)
			metrics.CompoundedKelly = kelly.Summary()
		}
	}

	flags := Flags{
		BlownAccount: kelly.Blown,
		NotRecovered: !flat.Recovered || !kelly.Recovered,
	}
	if metrics.Kelly != nil && *metrics.Kelly < 0 {
		flags.NegativeKelly = true
	}

	return &Evaluation{
		Metrics:      metrics,
		FlatStake:    flat,
		Kelly:        kelly,
		ResolvedRows: len(resolved),
		Flags:        flags,
	}
}
