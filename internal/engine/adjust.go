package engine

import "tradelens/internal/models"

// AdjustGain applies the two-stage economic adjustment to one raw gain/MAE
// pair. Step one stops the trade out at -stopLoss when the adverse excursion
// exceeded the stop; step two deducts the efficiency cost from every trade.
// All values are whole-number percentages (20 means 20%).
func AdjustGain(gainPct, maePct float64, params models.AdjustmentParams) (stopAdjusted, efficiencyAdjusted float64) {
	stopAdjusted = gainPct
	if maePct > params.StopLoss {
		stopAdjusted = -params.StopLoss
	}
	efficiencyAdjusted = stopAdjusted - params.Efficiency
	return stopAdjusted, efficiencyAdjusted
}

// adjustAll produces the adjusted view of a batch of raw trades. Downstream
// code never reads the raw gain again; every filter, resolution and metric
// works from the efficiency-adjusted gain.
func adjustAll(trades []models.Trade, params models.AdjustmentParams) []models.AdjustedTrade {
	out := make([]models.AdjustedTrade, len(trades))
	for i, t := range trades {
		stop, eff := AdjustGain(t.GainPct, t.MAEPct, params)
		out[i] = models.AdjustedTrade{
			Trade:                  t,
			StopAdjustedGain:       stop,
			EfficiencyAdjustedGain: eff,
		}
	}
	return out
}
