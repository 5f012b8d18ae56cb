// Package models defines the value objects shared across the analytics engine.
package models

import "time"

// Trade is one raw signal row after column mapping has been applied.
// Row preserves the original dataset position and is the stable tie-break
// when two candidates in a group carry the same timestamp.
type Trade struct {
	Row       int
	Ticker    string
	Date      time.Time
	TimeOfDay time.Duration
	HasTime   bool
	GainPct   float64
	MAEPct    float64
}

// AdjustedTrade carries the two-stage economic adjustment alongside the raw row.
// Recomputed whenever AdjustmentParams changes; never stored.
type AdjustedTrade struct {
	Trade
	StopAdjustedGain       float64
	EfficiencyAdjustedGain float64
}

// StoppedOut reports whether the stop-loss step replaced the raw gain.
func (t AdjustedTrade) StoppedOut(stopLoss float64) bool {
	return t.MAEPct > stopLoss
}

// ColumnMapping binds logical roles to concrete dataset column names.
// Validated once before any computation runs and treated as read-only.
type ColumnMapping struct {
	Ticker  string `mapstructure:"ticker" json:"ticker"`
	Date    string `mapstructure:"date" json:"date"`
	Time    string `mapstructure:"time" json:"time,omitempty"`
	GainPct string `mapstructure:"gain_pct" json:"gain_pct"`
	MAEPct  string `mapstructure:"mae_pct" json:"mae_pct"`
	WinLoss string `mapstructure:"win_loss" json:"win_loss,omitempty"`
}

// RequiredRoles returns the roles that must resolve to an existing column,
// keyed by role name.
func (m ColumnMapping) RequiredRoles() map[string]string {
	return map[string]string{
		"ticker":   m.Ticker,
		"date":     m.Date,
		"gain_pct": m.GainPct,
		"mae_pct":  m.MAEPct,
	}
}

// AdjustmentParams drives the two-stage trade adjustment. Percentages are
// whole numbers throughout (8 means 8%).
type AdjustmentParams struct {
	StopLoss   float64 `mapstructure:"stop_loss" json:"stop_loss"`
	Efficiency float64 `mapstructure:"efficiency" json:"efficiency"`
}

// DefaultAdjustmentParams returns the stock parameters.
func DefaultAdjustmentParams() AdjustmentParams {
	return AdjustmentParams{StopLoss: 8.0, Efficiency: 5.0}
}

// SizingParams drives position sizing for the equity calculators.
type SizingParams struct {
	KellyFraction   float64 `mapstructure:"kelly_fraction" json:"kelly_fraction"`
	Stake           float64 `mapstructure:"stake" json:"stake"`
	StartingCapital float64 `mapstructure:"starting_capital" json:"starting_capital"`
}

// DefaultSizingParams returns the stock sizing parameters.
func DefaultSizingParams() SizingParams {
	return SizingParams{KellyFraction: 0.5, Stake: 1000, StartingCapital: 10000}
}

// FilterOperator selects how a bounds criterion is evaluated.
type FilterOperator string

const (
	// Between keeps values inside [min, max], inclusive on both bounds.
	Between FilterOperator = "between"
	// NotBetween keeps values strictly outside [min, max]; values exactly at
	// a bound are excluded. Easy to invert by accident, see the filter tests.
	NotBetween FilterOperator = "not_between"
)

// MaxFilterCriteria caps the number of criteria per filter set.
const MaxFilterCriteria = 10

// FilterCriteria is one bounds predicate over a named numeric column.
// Invariant: MinVal <= MaxVal; violations are validation errors, never
// silently corrected.
type FilterCriteria struct {
	Column   string         `json:"column"`
	Operator FilterOperator `json:"operator"`
	MinVal   float64        `json:"min_val"`
	MaxVal   float64        `json:"max_val"`
}

// Matches reports whether a value satisfies the criterion.
func (c FilterCriteria) Matches(v float64) bool {
	inside := v >= c.MinVal && v <= c.MaxVal
	if c.Operator == NotBetween {
		return !inside
	}
	return inside
}

// DateRange is an inclusive calendar-date window. The zero value means
// "all dates".
type DateRange struct {
	Start time.Time `json:"start,omitempty"`
	End   time.Time `json:"end,omitempty"`
}

// IsAll reports whether the range passes every date through.
func (r DateRange) IsAll() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Contains reports whether d falls inside the range, inclusive at both ends.
func (r DateRange) Contains(d time.Time) bool {
	if !r.Start.IsZero() && d.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && d.After(r.End) {
		return false
	}
	return true
}

// WinLossKind tags the source of win/loss classification.
type WinLossKind string

const (
	// WinLossDerived classifies from the efficiency-adjusted gain.
	WinLossDerived WinLossKind = "derived"
	// WinLossExplicit names a dataset column carrying the raw label. The
	// derived classification still governs the metrics; the column only
	// participates in mapping validation and display.
	WinLossExplicit WinLossKind = "explicit"
)

// WinLossSource is the tagged variant selecting win/loss classification.
type WinLossSource struct {
	Kind          WinLossKind
	Column        string
	BreakevenWins bool
}

// DerivedWinLoss classifies from the adjusted gain; breakevenWins controls
// whether a zero adjusted gain counts as a win.
func DerivedWinLoss(breakevenWins bool) WinLossSource {
	return WinLossSource{Kind: WinLossDerived, BreakevenWins: breakevenWins}
}

// ExplicitWinLoss records an explicit label column.
func ExplicitWinLoss(column string) WinLossSource {
	return WinLossSource{Kind: WinLossExplicit, Column: column}
}

// IsWin applies the classification rule to an efficiency-adjusted gain.
// Positive is always a win, negative always a loss; zero follows the
// breakeven policy.
func (s WinLossSource) IsWin(efficiencyAdjustedGain float64) bool {
	if efficiencyAdjustedGain == 0 {
		return s.BreakevenWins
	}
	return efficiencyAdjustedGain > 0
}
