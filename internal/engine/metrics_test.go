package engine

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelens/internal/models"
)

func computeGains(t *testing.T, gains ...float64) TradingMetrics {
	t.Helper()
	return ComputeMetrics(adjustedGains(gains...),
		models.DerivedWinLoss(false),
		models.DefaultAdjustmentParams(),
		models.DefaultSizingParams())
}

func TestComputeMetrics_EmptyDatasetLeavesEverythingAbsent(t *testing.T) {
	m := computeGains(t)

	assert.Zero(t, m.TotalTrades)
	assert.Nil(t, m.WinRate)
	assert.Nil(t, m.AvgWinner)
	assert.Nil(t, m.AvgLoser)
	assert.Nil(t, m.RewardRisk)
	assert.Nil(t, m.ExpectedValue)
	assert.Nil(t, m.Edge)
	assert.Nil(t, m.Kelly)
	assert.Nil(t, m.FractionalKelly)
	assert.Nil(t, m.ExpectedGrowth)
	assert.Nil(t, m.MaxConsecutiveWins)
	assert.Nil(t, m.MaxConsecutiveLosses)
	assert.Nil(t, m.StopOutRate)
	assert.Nil(t, m.FlatStake)
	assert.Nil(t, m.CompoundedKelly)
}

func TestComputeMetrics_AllWinnersLeavesRatiosAbsent(t *testing.T) {
	m := computeGains(t, 5, 10, 15)

	require.NotNil(t, m.WinRate)
	assert.InDelta(t, 100, *m.WinRate, 1e-9)
	assert.Equal(t, 3, m.Winners.Count)
	assert.Zero(t, m.Losers.Count)

	assert.Nil(t, m.AvgLoser)
	assert.Nil(t, m.RewardRisk)
	assert.Nil(t, m.Kelly)
	assert.Nil(t, m.ExpectedValue)
	assert.Nil(t, m.Edge)
}

func TestComputeMetrics_KnownMix(t *testing.T) {
	// two winners (+10, +20), two losers (-5, -15): p = 0.5
	m := computeGains(t, 10, -5, 20, -15)

	require.NotNil(t, m.WinRate)
	assert.InDelta(t, 50, *m.WinRate, 1e-9)
	require.NotNil(t, m.AvgWinner)
	assert.InDelta(t, 15, *m.AvgWinner, 1e-9)
	require.NotNil(t, m.AvgLoser)
	assert.InDelta(t, -10, *m.AvgLoser, 1e-9)

	// rr = 1.5, ev = 0.5*15 - 0.5*10 = 2.5
	require.NotNil(t, m.RewardRisk)
	assert.InDelta(t, 1.5, *m.RewardRisk, 1e-9)
	require.NotNil(t, m.ExpectedValue)
	assert.InDelta(t, 2.5, *m.ExpectedValue, 1e-9)

	// edge = (rr+1)p - 1 = 0.25, kelly = edge/rr
	require.NotNil(t, m.Edge)
	assert.InDelta(t, 25, *m.Edge, 1e-9)
	require.NotNil(t, m.Kelly)
	assert.InDelta(t, 100.0/6, *m.Kelly, 1e-6)
	require.NotNil(t, m.FractionalKelly)
	assert.InDelta(t, 100.0/12, *m.FractionalKelly, 1e-6)

	require.NotNil(t, m.MedianWinner)
	assert.InDelta(t, 15, *m.MedianWinner, 1e-9)
	require.NotNil(t, m.MedianLoser)
	assert.InDelta(t, -10, *m.MedianLoser, 1e-9)
}

func TestComputeMetrics_Streaks(t *testing.T) {
	m := computeGains(t, 5, 8, 3, -1, -2, 6, -4)

	require.NotNil(t, m.MaxConsecutiveWins)
	assert.Equal(t, 3, *m.MaxConsecutiveWins)
	require.NotNil(t, m.MaxConsecutiveLosses)
	assert.Equal(t, 2, *m.MaxConsecutiveLosses)
}

func TestComputeMetrics_BreakevenPolicy(t *testing.T) {
	trades := adjustedGains(0, 10, -5)

	asLoss := ComputeMetrics(trades, models.DerivedWinLoss(false),
		models.DefaultAdjustmentParams(), models.DefaultSizingParams())
	asWin := ComputeMetrics(trades, models.DerivedWinLoss(true),
		models.DefaultAdjustmentParams(), models.DefaultSizingParams())

	assert.Equal(t, 1, asLoss.Winners.Count)
	assert.Equal(t, 2, asWin.Winners.Count)
}

func TestComputeMetrics_StopOutRate(t *testing.T) {
	params := models.AdjustmentParams{StopLoss: 8, Efficiency: 5}
	trades := []models.AdjustedTrade{
		{Trade: models.Trade{Row: 0, Date: day(1), MAEPct: 10}, StopAdjustedGain: -8, EfficiencyAdjustedGain: -13},
		{Trade: models.Trade{Row: 1, Date: day(2), MAEPct: 2}, StopAdjustedGain: 10, EfficiencyAdjustedGain: 5},
	}
	m := ComputeMetrics(trades, models.DerivedWinLoss(false), params, models.DefaultSizingParams())

	require.NotNil(t, m.StopOutRate)
	assert.InDelta(t, 50, *m.StopOutRate, 1e-9)
}

func TestComputeMetrics_SingleGainHasNoStd(t *testing.T) {
	m := computeGains(t, 10, -5)

	assert.Nil(t, m.Winners.Std)
	assert.Nil(t, m.Losers.Std)
	require.NotNil(t, m.Winners.Mean)
	require.NotNil(t, m.Winners.Median)
}

// Property: the win rate is a probability scaled to percent, and winner and
// loser counts always partition the total.
func TestProperty_WinRateBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("win rate in [0,100], counts partition the total", prop.ForAll(
		func(gains []float64) bool {
			if len(gains) == 0 {
				return computeGains(t).WinRate == nil
			}
			m := computeGains(t, gains...)
			if m.WinRate == nil || *m.WinRate < 0 || *m.WinRate > 100 {
				return false
			}
			return m.Winners.Count+m.Losers.Count == m.TotalTrades
		},
		gen.SliceOf(gen.Float64Range(-50, 50)),
	))

	properties.Property("mean winner is positive, mean loser non-positive", prop.ForAll(
		func(gains []float64) bool {
			m := computeGains(t, gains...)
			if m.AvgWinner != nil && *m.AvgWinner <= 0 {
				return false
			}
			if m.AvgLoser != nil && *m.AvgLoser > 0 {
				return false
			}
			return true
		},
		gen.SliceOf(gen.Float64Range(-50, 50)),
	))

	properties.TestingRun(t)
}
