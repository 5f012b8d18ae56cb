package engine

import "tradelens/internal/models"

// EquityPoint is one step of an equity curve, one per resolved trade.
type EquityPoint struct {
	TradeIndex int     `json:"trade_index"`
	Value      float64 `json:"value"`
}

// EquityCurve is the full curve plus its drawdown summary. Curves are
// emitted append-only; once an evaluation completes they are never mutated.
type EquityCurve struct {
	Points []EquityPoint `json:"points"`

	PnL            float64  `json:"pnl"`
	PeakValue      float64  `json:"peak_value"`
	MaxDrawdown    float64  `json:"max_drawdown"`
	MaxDrawdownPct *float64 `json:"max_drawdown_pct,omitempty"`

	// DrawdownDuration counts trading-day steps from the max-drawdown peak to
	// the first point at or above that peak again. Recovered is false when the
	// series ends still underwater.
	DrawdownDuration int  `json:"drawdown_duration"`
	Recovered        bool `json:"recovered"`

	// Blown is set on the compounded curve once equity reaches zero or below;
	// every later point is frozen at zero.
	Blown bool `json:"blown,omitempty"`
}

// FixedStakeCurve builds the flat-stake curve: cumulative PnL at trade i is
// stake times the running sum of efficiency-adjusted gains. Gains are treated
// as fractions of the stake at this boundary only (divide by 100 here and
// nowhere else).
func FixedStakeCurve(trades []models.AdjustedTrade, stake float64) EquityCurve {
	points := make([]EquityPoint, 0, len(trades))
	cumulative := 0.0
	for i, t := range trades {
		cumulative += stake * t.EfficiencyAdjustedGain / 100
		points = append(points, EquityPoint{TradeIndex: i, Value: cumulative})
	}
	curve := EquityCurve{Points: points, PnL: cumulative}
	curve.summarizeDrawdown(0)
	return curve
}

// CompoundedKellyCurve builds the compounded curve: each trade multiplies
// equity by (1 + gainFraction·betFraction) where betFraction is the
// fractional-Kelly position size as a fraction of equity. The trajectory is
// not clamped on the way down, but once equity reaches zero or below the
// account is blown and all subsequent points freeze at zero.
func CompoundedKellyCurve(trades []models.AdjustedTrade, startingCapital, betFraction float64) EquityCurve {
	points := make([]EquityPoint, 0, len(trades))
	equity := startingCapital
	blown := false
	for i, t := range trades {
		if !blown {
			equity *= 1 + (t.EfficiencyAdjustedGain/100)*betFraction
			if equity <= 0 {
				equity = 0
				blown = true
			}
		}
		points = append(points, EquityPoint{TradeIndex: i, Value: equity})
	}
	curve := EquityCurve{Points: points, PnL: equity - startingCapital, Blown: blown}
	curve.summarizeDrawdown(startingCapital)
	return curve
}

// summarizeDrawdown runs the shared drawdown algorithm: track the running
// peak, record the deepest peak-to-trough decline, and measure how many steps
// the max-drawdown peak took to be regained. start seeds the initial peak so
// a first-trade loss already counts as drawdown.
func (c *EquityCurve) summarizeDrawdown(start float64) {
	peak := start
	peakIdx := -1
	c.PeakValue = peak
	c.Recovered = true

	maxDD := 0.0
	var maxDDPeak float64
	maxDDPeakIdx := -1

	for i, p := range c.Points {
		if p.Value > peak {
			peak = p.Value
			peakIdx = i
		}
		if peak > c.PeakValue {
			c.PeakValue = peak
		}
		if dd := peak - p.Value; dd > maxDD {
			maxDD = dd
			maxDDPeak = peak
			maxDDPeakIdx = peakIdx
		}
	}

	c.MaxDrawdown = maxDD
	if maxDD == 0 {
		// never in drawdown
		c.DrawdownDuration = 0
		if c.PeakValue > 0 {
			zero := 0.0
			c.MaxDrawdownPct = &zero
		}
		return
	}
	if maxDDPeak > 0 {
		pct := maxDD / maxDDPeak * 100
		c.MaxDrawdownPct = &pct
	}

	// steps from the peak to the first subsequent point back at the peak
	for i := maxDDPeakIdx + 1; i < len(c.Points); i++ {
		if c.Points[i].Value >= maxDDPeak {
			c.DrawdownDuration = i - maxDDPeakIdx
			return
		}
	}
	c.DrawdownDuration = len(c.Points) - 1 - maxDDPeakIdx
	c.Recovered = false
}
