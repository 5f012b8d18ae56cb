package engine

import (
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tradelens/internal/errors"
	"tradelens/internal/models"
)

func TestValidateFilters_CollectsEveryProblem(t *testing.T) {
	ds := buildDataset(t,
		[]string{"Ticker", "RSI"},
		[][]string{{"AAPL", "55"}},
	)

	filters := []models.FilterCriteria{
		{Column: "RSI", Operator: models.Between, MinVal: 70, MaxVal: 30},
		{Column: "Volume", Operator: models.Between, MinVal: 0, MaxVal: 1},
		{Column: "Ticker", Operator: models.NotBetween, MinVal: 0, MaxVal: 1},
		{Column: "RSI", Operator: "outside", MinVal: 0, MaxVal: 1},
	}

	err := ValidateFilters(ds, filters)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRange)
	assert.ErrorIs(t, err, apperrors.ErrUnknownColumn)
	assert.ErrorIs(t, err, apperrors.ErrNonNumericColumn)
	assert.ErrorIs(t, err, apperrors.ErrConfigInvalid)
}

func TestValidateFilters_TooMany(t *testing.T) {
	ds := buildDataset(t, []string{"RSI"}, nil)

	filters := make([]models.FilterCriteria, models.MaxFilterCriteria+1)
	for i := range filters {
		filters[i] = models.FilterCriteria{Column: "RSI", Operator: models.Between, MinVal: 0, MaxVal: 1}
	}
	assert.ErrorIs(t, ValidateFilters(ds, filters), apperrors.ErrTooManyFilters)
	assert.NoError(t, ValidateFilters(ds, filters[:models.MaxFilterCriteria]))
}

func TestApplyFilters_ZeroCriteriaKeepsEverything(t *testing.T) {
	ds := buildDataset(t,
		[]string{"RSI"},
		[][]string{{"10"}, {"20"}, {"30"}},
	)
	mask, err := ApplyFilters(ds, nil)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, true}, mask)
}

func TestApplyFilters_BlankCellFailsCriterion(t *testing.T) {
	ds := buildDataset(t,
		[]string{"RSI"},
		[][]string{{"50"}, {""}, {"80"}},
	)
	mask, err := ApplyFilters(ds, []models.FilterCriteria{
		{Column: "RSI", Operator: models.Between, MinVal: 0, MaxVal: 100},
	})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, mask)
}

func TestApplyFilters_CriteriaAreANDed(t *testing.T) {
	ds := buildDataset(t,
		[]string{"RSI", "Volume"},
		[][]string{
			{"50", "1000"},
			{"50", "10"},
			{"90", "1000"},
		},
	)
	mask, err := ApplyFilters(ds, []models.FilterCriteria{
		{Column: "RSI", Operator: models.Between, MinVal: 30, MaxVal: 70},
		{Column: "Volume", Operator: models.Between, MinVal: 100, MaxVal: 10000},
	})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, false}, mask)
}

// Property: for any value and bounds, between and not_between are exact
// complements, with both boundary values belonging to between.
func TestProperty_BetweenComplement(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("not_between is the complement of between", prop.ForAll(
		func(v, a, b float64) bool {
			lo, hi := a, b
			if lo > hi {
				lo, hi = hi, lo
			}
			between := models.FilterCriteria{Operator: models.Between, MinVal: lo, MaxVal: hi}
			outside := models.FilterCriteria{Operator: models.NotBetween, MinVal: lo, MaxVal: hi}
			return between.Matches(v) != outside.Matches(v)
		},
		gen.Float64Range(-1000, 1000),
		gen.Float64Range(-1000, 1000),
		gen.Float64Range(-1000, 1000),
	))

	properties.Property("boundary values are inside between, outside not_between", prop.ForAll(
		func(lo float64, width float64) bool {
			hi := lo + width
			between := models.FilterCriteria{Operator: models.Between, MinVal: lo, MaxVal: hi}
			outside := models.FilterCriteria{Operator: models.NotBetween, MinVal: lo, MaxVal: hi}
			return between.Matches(lo) && between.Matches(hi) &&
				!outside.Matches(lo) && !outside.Matches(hi)
		},
		gen.Float64Range(-1000, 1000),
		gen.Float64Range(0, 500),
	))

	properties.TestingRun(t)
}

// Property: applying the same mask twice changes nothing; the mask is a pure
// function of the dataset and criteria.
func TestProperty_ApplyFiltersDeterministic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("same inputs give the same mask", prop.ForAll(
		func(values []int, lo, hi int) bool {
			if lo > hi {
				lo, hi = hi, lo
			}
			rows := make([][]string, len(values))
			for i, v := range values {
				rows[i] = []string{strconv.Itoa(v)}
			}
			ds := buildDataset(t, []string{"X"}, rows)
			filters := []models.FilterCriteria{
				{Column: "X", Operator: models.Between, MinVal: float64(lo), MaxVal: float64(hi)},
			}

			first, err := ApplyFilters(ds, filters)
			if err != nil {
				return false
			}
			second, err := ApplyFilters(ds, filters)
			if err != nil {
				return false
			}
			for i := range first {
				if first[i] != second[i] {
					return false
				}
				want := values[i] >= lo && values[i] <= hi
				if first[i] != want {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(-100, 100)),
		gen.IntRange(-100, 100),
		gen.IntRange(-100, 100),
	))

	properties.TestingRun(t)
}
