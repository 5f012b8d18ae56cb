// Package report renders evaluation results as CSV and Markdown for
// external charting and review.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"tradelens/internal/engine"
)

// Comparison pairs a baseline evaluation with an optional filtered one so
// both columns render side by side.
type Comparison struct {
	Source      string
	GeneratedAt time.Time
	Baseline    *engine.Evaluation
	Filtered    *engine.Evaluation
}

// MetricRow is the fixed CSV schema for one metric line.
type MetricRow struct {
	Metric   string `csv:"metric"`
	Baseline string `csv:"baseline"`
	Filtered string `csv:"filtered"`
}

// EquityRow is the fixed CSV schema for one equity-curve point.
type EquityRow struct {
	TradeIndex int     `csv:"trade_index"`
	FlatStake  float64 `csv:"flat_stake"`
	Kelly      float64 `csv:"kelly"`
}

// RenderCSV renders the metric comparison as CSV.
func RenderCSV(c *Comparison) (string, error) {
	return gocsv.MarshalString(metricRows(c))
}

// RenderEquityCSV renders the baseline equity curves as CSV, one row per
// resolved trade.
func RenderEquityCSV(ev *engine.Evaluation) (string, error) {
	rows := make([]EquityRow, 0, len(ev.FlatStake.Points))
	for i, p := range ev.FlatStake.Points {
		row := EquityRow{TradeIndex: p.TradeIndex, FlatStake: p.Value}
		if i < len(ev.Kelly.Points) {
			row.Kelly = ev.Kelly.Points[i].Value
		}
		rows = append(rows, row)
	}
	return gocsv.MarshalString(rows)
}

// RenderMarkdown renders the comparison as a Markdown report.
func RenderMarkdown(c *Comparison) string {
	var sb strings.Builder

	sb.WriteString("# tradelens report\n\n")
	fmt.Fprintf(&sb, "Source: %s\n\n", c.Source)
	fmt.Fprintf(&sb, "Generated: %s\n\n", c.GeneratedAt.Format(time.RFC3339))

	sb.WriteString("| Metric | Baseline |")
	if c.Filtered != nil {
		sb.WriteString(" Filtered |")
	}
	sb.WriteString("\n|--------|----------|")
	if c.Filtered != nil {
		sb.WriteString("----------|")
	}
	sb.WriteString("\n")

	for _, row := range metricRows(c) {
		if c.Filtered != nil {
			fmt.Fprintf(&sb, "| %s | %s | %s |\n", row.Metric, row.Baseline, row.Filtered)
		} else {
			fmt.Fprintf(&sb, "| %s | %s |\n", row.Metric, row.Baseline)
		}
	}
	sb.WriteString("\n")

	writeFlags(&sb, "Baseline", c.Baseline)
	if c.Filtered != nil {
		writeFlags(&sb, "Filtered", c.Filtered)
	}
	return sb.String()
}

func writeFlags(sb *strings.Builder, label string, ev *engine.Evaluation) {
	if !ev.Flags.NegativeKelly && !ev.Flags.BlownAccount && !ev.Flags.NotRecovered {
		return
	}
	fmt.Fprintf(sb, "**%s warnings:**\n\n", label)
	if ev.Flags.NegativeKelly {
		sb.WriteString("- Negative Kelly: the edge is negative, position sizing is not meaningful\n")
	}
	if ev.Flags.BlownAccount {
		sb.WriteString("- Blown account: compounded equity reached zero\n")
	}
	if ev.Flags.NotRecovered {
		sb.WriteString("- Drawdown not recovered by end of series\n")
	}
	sb.WriteString("\n")
}

func metricRows(c *Comparison) []MetricRow {
	rows := make([]MetricRow, 0, 24)

	b := c.Baseline.Metrics
	var f *engine.TradingMetrics
	if c.Filtered != nil {
		f = &c.Filtered.Metrics
	}

	add := func(name string, get func(m engine.TradingMetrics) string) {
		row := MetricRow{Metric: name, Baseline: get(b)}
		if f != nil {
			row.Filtered = get(*f)
		}
		rows = append(rows, row)
	}

	add("Trades", func(m engine.TradingMetrics) string { return fmt.Sprintf("%d", m.TotalTrades) })
	add("Win Rate %", func(m engine.TradingMetrics) string { return fmtFloat(m.WinRate, 2) })
	add("Avg Winner %", func(m engine.TradingMetrics) string { return fmtFloat(m.AvgWinner, 2) })
	add("Avg Loser %", func(m engine.TradingMetrics) string { return fmtFloat(m.AvgLoser, 2) })
	add("Median Winner %", func(m engine.TradingMetrics) string { return fmtFloat(m.MedianWinner, 2) })
	add("Median Loser %", func(m engine.TradingMetrics) string { return fmtFloat(m.MedianLoser, 2) })
	add("Reward:Risk", func(m engine.TradingMetrics) string { return fmtFloat(m.RewardRisk, 2) })
	add("Expected Value %", func(m engine.TradingMetrics) string { return fmtFloat(m.ExpectedValue, 2) })
	add("Edge %", func(m engine.TradingMetrics) string { return fmtFloat(m.Edge, 2) })
	add("Kelly %", func(m engine.TradingMetrics) string { return fmtFloat(m.Kelly, 2) })
	add("Fractional Kelly %", func(m engine.TradingMetrics) string { return fmtFloat(m.FractionalKelly, 2) })
	add("Expected Growth %", func(m engine.TradingMetrics) string { return fmtFloat(m.ExpectedGrowth, 4) })
	add("Max Consecutive Wins", func(m engine.TradingMetrics) string { return fmtInt(m.MaxConsecutiveWins) })
	add("Max Consecutive Losses", func(m engine.TradingMetrics) string { return fmtInt(m.MaxConsecutiveLosses) })
	add("Stopped Out %", func(m engine.TradingMetrics) string { return fmtFloat(m.StopOutRate, 2) })
	add("Flat PnL $", func(m engine.TradingMetrics) string { return fmtEquity(m.FlatStake, equityPnL) })
	add("Flat Max DD $", func(m engine.TradingMetrics) string { return fmtEquity(m.FlatStake, equityDD) })
	add("Flat Max DD %", func(m engine.TradingMetrics) string { return fmtEquity(m.FlatStake, equityDDPct) })
	add("Flat DD Duration", func(m engine.TradingMetrics) string { return fmtEquity(m.FlatStake, equityDuration) })
	add("Kelly PnL $", func(m engine.TradingMetrics) string { return fmtEquity(m.CompoundedKelly, equityPnL) })
	add("Kelly Max DD $", func(m engine.TradingMetrics) string { return fmtEquity(m.CompoundedKelly, equityDD) })
	add("Kelly Max DD %", func(m engine.TradingMetrics) string { return fmtEquity(m.CompoundedKelly, equityDDPct) })
	add("Kelly DD Duration", func(m engine.TradingMetrics) string { return fmtEquity(m.CompoundedKelly, equityDuration) })
	add("Winners / Losers", func(m engine.TradingMetrics) string {
		return fmt.Sprintf("%d / %d", m.Winners.Count, m.Losers.Count)
	})
	return rows
}

const absent = "-"

func fmtFloat(v *float64, prec int) string {
	if v == nil {
		return absent
	}
	return fmt.Sprintf("%.*f", prec, *v)
}

func fmtInt(v *int) string {
	if v == nil {
		return absent
	}
	return fmt.Sprintf("%d", *v)
}

type equityField int

const (
	equityPnL equityField = iota
	equityDD
	equityDDPct
	equityDuration
)

func fmtEquity(s *engine.EquitySummary, field equityField) string {
	if s == nil {
		return absent
	}
	switch field {
	case equityPnL:
		return fmt.Sprintf("%.2f", s.PnL)
	case equityDD:
		return fmt.Sprintf("%.2f", s.MaxDrawdown)
	case equityDDPct:
		return fmtFloat(s.MaxDrawdownPct, 2)
	case equityDuration:
		if !s.Recovered {
			return fmt.Sprintf("%d (not recovered)", s.DrawdownDuration)
		}
		return fmt.Sprintf("%d", s.DrawdownDuration)
	}
	return absent
}
