package engine

import (
	"math"
	"sort"

	"tradelens/internal/models"
)

// Distribution summarizes one side of the outcome distribution. The raw
// gains are retained for downstream histogram rendering.
type Distribution struct {
	Gains  []float64 `json:"gains"`
	Count  int       `json:"count"`
	Mean   *float64  `json:"mean,omitempty"`
	Median *float64  `json:"median,omitempty"`
	Std    *float64  `json:"std,omitempty"`
}

// EquitySummary is the four-field drawdown digest surfaced on the metrics
// snapshot; the full curve lives on the Evaluation.
type EquitySummary struct {
	PnL              float64  `json:"pnl"`
	MaxDrawdown      float64  `json:"max_drawdown"`
	MaxDrawdownPct   *float64 `json:"max_drawdown_pct,omitempty"`
	DrawdownDuration int      `json:"drawdown_duration"`
	Recovered        bool     `json:"recovered"`
}

// TradingMetrics is an immutable snapshot of the 25-metric summary. Every
// field whose denominator can be empty is a pointer: absent means undefined
// (no winners, no losers, no trades), never zero.
type TradingMetrics struct {
	TotalTrades int `json:"total_trades"`

	WinRate         *float64 `json:"win_rate,omitempty"`
	AvgWinner       *float64 `json:"avg_winner,omitempty"`
	AvgLoser        *float64 `json:"avg_loser,omitempty"`
	RewardRisk      *float64 `json:"reward_risk,omitempty"`
	ExpectedValue   *float64 `json:"expected_value,omitempty"`
	Edge            *float64 `json:"edge,omitempty"`
	Kelly           *float64 `json:"kelly,omitempty"`
	FractionalKelly *float64 `json:"fractional_kelly,omitempty"`
	ExpectedGrowth  *float64 `json:"expected_growth,omitempty"`
	MedianWinner    *float64 `json:"median_winner,omitempty"`
	MedianLoser     *float64 `json:"median_loser,omitempty"`

	MaxConsecutiveWins   *int     `json:"max_consecutive_wins,omitempty"`
	MaxConsecutiveLosses *int     `json:"max_consecutive_losses,omitempty"`
	StopOutRate          *float64 `json:"stop_out_rate,omitempty"`

	FlatStake       *EquitySummary `json:"flat_stake,omitempty"`
	CompoundedKelly *EquitySummary `json:"compounded_kelly,omitempty"`

	Winners Distribution `json:"winners"`
	Losers  Distribution `json:"losers"`
}

// ComputeMetrics builds the metrics snapshot over an adjusted,
// already-resolved dataset in its given (assumed chronological) order.
// Classification always derives from the efficiency-adjusted gain; the
// win/loss source only contributes its breakeven policy. The flat-stake and
// compounded-Kelly summaries are attached afterwards from the full curves,
// see Evaluation.
func ComputeMetrics(trades []models.AdjustedTrade, winLoss models.WinLossSource,
	params models.AdjustmentParams, sizing models.SizingParams) TradingMetrics {

	m := TradingMetrics{TotalTrades: len(trades)}
	if len(trades) == 0 {
		return m
	}

	var winners, losers []float64
	wins := 0
	stopped := 0
	winStreak, lossStreak := 0, 0
	maxWinStreak, maxLossStreak := 0, 0

	for _, t := range trades {
		eag := t.EfficiencyAdjustedGain
		if winLoss.IsWin(eag) {
			wins++
			winners = append(winners, eag)
			winStreak++
			lossStreak = 0
			if winStreak > maxWinStreak {
				maxWinStreak = winStreak
			}
		} else {
			losers = append(losers, eag)
			lossStreak++
			winStreak = 0
			if lossStreak > maxLossStreak {
				maxLossStreak = lossStreak
			}
		}
		if t.StoppedOut(params.StopLoss) {
			stopped++
		}
	}

	total := float64(len(trades))
	p := float64(wins) / total

	m.WinRate = ptr(p * 100)
	m.MaxConsecutiveWins = &maxWinStreak
	m.MaxConsecutiveLosses = &maxLossStreak
	m.StopOutRate = ptr(float64(stopped) / total * 100)

	m.Winners = summarize(winners)
	m.Losers = summarize(losers)
	m.AvgWinner = m.Winners.Mean
	m.AvgLoser = m.Losers.Mean
	m.MedianWinner = m.Winners.Median
	m.MedianLoser = m.Losers.Median

	// Ratio metrics need both sides of the distribution; a missing mean on
	// either side leaves them all absent rather than computed against zero.
	if m.AvgWinner != nil && m.AvgLoser != nil && *m.AvgLoser != 0 {
		rr := math.Abs(*m.AvgWinner / *m.AvgLoser)
		m.RewardRisk = &rr
		m.ExpectedValue = ptr(p**m.AvgWinner - (1-p)*math.Abs(*m.AvgLoser))

		edge := (rr+1)*p - 1
		m.Edge = ptr(edge * 100)

		kelly := edge / rr
		m.Kelly = ptr(kelly * 100)
		m.FractionalKelly = ptr(kelly * sizing.KellyFraction * 100)

		kf := kelly * sizing.KellyFraction
		if 1+rr*kf > 0 && 1-kf > 0 {
			growth := math.Pow(1+rr*kf, p)*math.Pow(1-kf, 1-p) - 1
			m.ExpectedGrowth = ptr(growth * 100)
		}
	}

	return m
}

// betFraction converts the Kelly percentage into the per-trade fraction of
// equity put at risk. Absent when Kelly itself is undefined.
func (m TradingMetrics) betFraction(sizing models.SizingParams) (float64, bool) {
	if m.Kelly == nil {
		return 0, false
	}
	return *m.Kelly / 100 * sizing.KellyFraction, true
}

// Summary extracts the four-field drawdown digest from a curve.
func (c EquityCurve) Summary() *EquitySummary {
	return &EquitySummary{
		PnL:              c.PnL,
		MaxDrawdown:      c.MaxDrawdown,
		MaxDrawdownPct:   c.MaxDrawdownPct,
		DrawdownDuration: c.DrawdownDuration,
		Recovered:        c.Recovered,
	}
}

// summarize computes count, mean, median and sample standard deviation over
// one side of the distribution. All statistics are absent for an empty side.
func summarize(gains []float64) Distribution {
	d := Distribution{Gains: gains, Count: len(gains)}
	if len(gains) == 0 {
		return d
	}

	sum := 0.0
	for _, g := range gains {
		sum += g
	}
	mean := sum / float64(len(gains))
	d.Mean = &mean
	d.Median = ptr(median(gains))

	if len(gains) >= 2 {
		sumSq := 0.0
		for _, g := range gains {
			diff := g - mean
			sumSq += diff * diff
		}
		d.Std = ptr(math.Sqrt(sumSq / float64(len(gains)-1)))
	}
	return d
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func ptr(v float64) *float64 {
	return &v
}
