package engine

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelens/internal/models"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func trade(row int, ticker string, date time.Time, clock string, gain float64) models.AdjustedTrade {
	t := models.Trade{Row: row, Ticker: ticker, Date: date, GainPct: gain}
	if clock != "" {
		parsed, err := time.Parse("15:04", clock)
		if err != nil {
			panic(err)
		}
		t.TimeOfDay = time.Duration(parsed.Hour())*time.Hour + time.Duration(parsed.Minute())*time.Minute
		t.HasTime = true
	}
	return models.AdjustedTrade{Trade: t, StopAdjustedGain: gain, EfficiencyAdjustedGain: gain}
}

func TestResolveFirstTriggers_OnePerTickerDate(t *testing.T) {
	trades := []models.AdjustedTrade{
		trade(0, "AAPL", day(1), "10:30", 5),
		trade(1, "AAPL", day(1), "09:45", 8), // earlier, wins
		trade(2, "AAPL", day(2), "09:30", -3),
		trade(3, "GOOG", day(1), "11:00", 2),
	}

	resolved := resolveFirstTriggers(trades, nil)
	require.Len(t, resolved, 3)

	// chronological output: both day-1 rows before the day-2 row
	assert.Equal(t, 1, resolved[0].Row)
	assert.Equal(t, 3, resolved[1].Row)
	assert.Equal(t, 2, resolved[2].Row)
}

func TestResolveFirstTriggers_MissingTimeSortsFirst(t *testing.T) {
	trades := []models.AdjustedTrade{
		trade(0, "AAPL", day(1), "09:15", 5),
		trade(1, "AAPL", day(1), "", 8),
	}
	resolved := resolveFirstTriggers(trades, nil)
	require.Len(t, resolved, 1)
	assert.Equal(t, 1, resolved[0].Row)
}

func TestResolveFirstTriggers_TieBreaksByRowOrder(t *testing.T) {
	trades := []models.AdjustedTrade{
		trade(0, "AAPL", day(1), "09:30", 5),
		trade(1, "AAPL", day(1), "09:30", 8),
	}
	resolved := resolveFirstTriggers(trades, nil)
	require.Len(t, resolved, 1)
	assert.Equal(t, 0, resolved[0].Row)
}

func TestResolveFirstTriggers_FilteredSkipsToNextCandidate(t *testing.T) {
	trades := []models.AdjustedTrade{
		trade(0, "AAPL", day(1), "09:30", 5),
		trade(1, "AAPL", day(1), "10:00", 8),
		trade(2, "GOOG", day(1), "09:30", -1),
	}
	keep := func(row int) bool { return row != 0 && row != 2 }

	resolved := resolveFirstTriggers(trades, keep)
	require.Len(t, resolved, 1)
	assert.Equal(t, 1, resolved[0].Row)
}

func TestResolveFirstTriggers_Empty(t *testing.T) {
	assert.Nil(t, resolveFirstTriggers(nil, nil))
	assert.Empty(t, resolveFirstTriggers([]models.AdjustedTrade{}, func(int) bool { return true }))
}

// Property: the baseline resolution emits exactly one trade per distinct
// (ticker, date) group, never mutates its input, and the output is sorted
// chronologically.
func TestProperty_ResolverGroupInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	tickers := []string{"AAPL", "GOOG", "MSFT"}

	// each seed deterministically expands into one raw row: ticker, day,
	// optional time-of-day and gain are all carved out of the integer
	properties.Property("one resolved trade per ticker-date group", prop.ForAll(
		func(seeds []int) bool {
			trades := make([]models.AdjustedTrade, len(seeds))
			groups := map[string]bool{}
			for i, seed := range seeds {
				ticker := tickers[seed%len(tickers)]
				d := day(1 + (seed/3)%5)
				at := trade(i, ticker, d, "", float64(seed%41)-20)
				if minute := (seed / 15) % 301; minute > 0 {
					at.TimeOfDay = time.Duration(minute) * time.Minute
					at.HasTime = true
				}
				trades[i] = at
				groups[ticker+d.String()] = true
			}

			resolved := resolveFirstTriggers(trades, nil)
			if len(resolved) != len(groups) {
				return false
			}
			for i := 1; i < len(resolved); i++ {
				a, b := resolved[i-1], resolved[i]
				if a.Date.After(b.Date) {
					return false
				}
				if a.Date.Equal(b.Date) && timeKey(a) > timeKey(b) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 100000)),
	))

	properties.TestingRun(t)
}
