package cli

import (
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"tradelens/internal/engine"
	"tradelens/internal/models"
)

func TestFormatOptional_AbsentValues(t *testing.T) {
	assert.Equal(t, Absent, FormatOptionalFloat(nil, 2))
	assert.Equal(t, Absent, FormatOptionalPercent(nil))
	assert.Equal(t, Absent, FormatOptionalInt(nil))
	assert.Equal(t, Absent, FormatDrawdownDuration(nil))
}

func TestFormatOptional_PresentValues(t *testing.T) {
	v := 12.3456
	assert.Equal(t, "12.35", FormatOptionalFloat(&v, 2))
	assert.Equal(t, "12.35%", FormatOptionalPercent(&v))

	n := 7
	assert.Equal(t, "7", FormatOptionalInt(&n))
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "+$250.00", FormatCurrency(250))
	assert.Equal(t, "-$80.50", FormatCurrency(-80.5))
	assert.Equal(t, "$0.00", FormatCurrency(0))
}

func TestFormatDrawdownDuration(t *testing.T) {
	recovered := &engine.EquitySummary{DrawdownDuration: 12, Recovered: true}
	assert.Equal(t, "12 days", FormatDrawdownDuration(recovered))

	underwater := &engine.EquitySummary{DrawdownDuration: 30, Recovered: false}
	assert.Equal(t, "30 days (not recovered)", FormatDrawdownDuration(underwater))
}

func TestParseWhereSpecs(t *testing.T) {
	filters, err := parseWhereSpecs([]string{
		"RSI:between:30:70",
		"Volume : not_between : 0 : 100000",
	})
	assert.NoError(t, err)
	assert.Equal(t, []models.FilterCriteria{
		{Column: "RSI", Operator: models.Between, MinVal: 30, MaxVal: 70},
		{Column: "Volume", Operator: models.NotBetween, MinVal: 0, MaxVal: 100000},
	}, filters)

	for _, bad := range []string{
		"RSI:between:30",
		"RSI:outside:30:70",
		"RSI:between:low:70",
		"RSI:between:30:high",
	} {
		_, err := parseWhereSpecs([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestParseDateRange(t *testing.T) {
	r, err := parseDateRange("2024-01-01", "2024-06-30")
	assert.NoError(t, err)
	assert.False(t, r.IsAll())
	assert.Equal(t, 2024, r.Start.Year())

	r, err = parseDateRange("", "")
	assert.NoError(t, err)
	assert.True(t, r.IsAll())

	_, err = parseDateRange("01/01/2024", "")
	assert.Error(t, err, "only ISO dates on the command line")

	_, err = parseDateRange("2024-06-30", "2024-01-01")
	assert.Error(t, err, "inverted range")
}

// Property: optional formatting never panics and the numeric part always
// parses back for present values.
func TestProperty_OptionalPercentRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("formatted percent parses back within rounding", prop.ForAll(
		func(v float64) bool {
			s := FormatOptionalPercent(&v)
			if !strings.HasSuffix(s, "%") {
				return false
			}
			parsed, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
			if err != nil {
				return false
			}
			diff := parsed - v
			return diff < 0.005+1e-12 && diff > -0.005-1e-12
		},
		gen.Float64Range(-10000, 10000),
	))

	properties.TestingRun(t)
}
