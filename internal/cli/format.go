package cli

import (
	"fmt"

	"tradelens/internal/engine"
)

// Absent is printed for metrics that are undefined for the input.
const Absent = "—"

// FormatOptionalFloat formats an optional metric with the given precision.
func FormatOptionalFloat(v *float64, prec int) string {
	if v == nil {
		return Absent
	}
	return fmt.Sprintf("%.*f", prec, *v)
}

// FormatOptionalPercent formats an optional percentage metric.
func FormatOptionalPercent(v *float64) string {
	if v == nil {
		return Absent
	}
	return fmt.Sprintf("%.2f%%", *v)
}

// FormatOptionalInt formats an optional count metric.
func FormatOptionalInt(v *int) string {
	if v == nil {
		return Absent
	}
	return fmt.Sprintf("%d", *v)
}

// FormatCurrency formats a currency amount with a sign for gains.
func FormatCurrency(amount float64) string {
	if amount > 0 {
		return fmt.Sprintf("+$%.2f", amount)
	}
	if amount < 0 {
		return fmt.Sprintf("-$%.2f", -amount)
	}
	return "$0.00"
}

// FormatDrawdownDuration renders the recovery duration, flagging series that
// end still underwater.
func FormatDrawdownDuration(s *engine.EquitySummary) string {
	if s == nil {
		return Absent
	}
	if !s.Recovered {
		return fmt.Sprintf("%d days (not recovered)", s.DrawdownDuration)
	}
	return fmt.Sprintf("%d days", s.DrawdownDuration)
}
