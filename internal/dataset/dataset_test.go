package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tradelens/internal/errors"
)

func TestNew_RejectsBadHeaders(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, apperrors.ErrEmptyHeader)

	_, err = New([]string{"A", ""})
	assert.Error(t, err)

	_, err = New([]string{"A", "A"})
	assert.Error(t, err)

	_, err = New([]string{"A", " A "})
	assert.Error(t, err, "names are trimmed before duplicate detection")
}

func TestAppendRow_PadsShortRejectsWide(t *testing.T) {
	ds, err := New([]string{"A", "B", "C"})
	require.NoError(t, err)

	require.NoError(t, ds.AppendRow([]string{"1"}))
	v, ok := ds.Value(0, "B")
	assert.True(t, ok)
	assert.Equal(t, "", v)

	assert.Error(t, ds.AppendRow([]string{"1", "2", "3", "4"}))
	assert.Equal(t, 1, ds.NumRows())
}

func TestFloats_ParsesPercentSuffixAndBlanks(t *testing.T) {
	ds, err := New([]string{"Gain"})
	require.NoError(t, err)
	for _, cell := range []string{"12.5", "7%", "  ", "-3.25%"} {
		require.NoError(t, ds.AppendRow([]string{cell}))
	}

	col, err := ds.Floats("Gain")
	require.NoError(t, err)
	assert.Equal(t, []float64{12.5, 7, 0, -3.25}, col.Values)
	assert.Equal(t, []bool{true, true, false, true}, col.Valid)
}

func TestFloats_NonNumericNamesFirstOffendingRow(t *testing.T) {
	ds, err := New([]string{"Gain"})
	require.NoError(t, err)
	require.NoError(t, ds.AppendRow([]string{"1"}))
	require.NoError(t, ds.AppendRow([]string{"banana"}))

	_, err = ds.Floats("Gain")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNonNumericColumn)

	var derr *apperrors.DataError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, 1, derr.Row)
	assert.Equal(t, "Gain", derr.Column)
}

func TestFloats_UnknownColumn(t *testing.T) {
	ds, err := New([]string{"A"})
	require.NoError(t, err)

	_, err = ds.Floats("B")
	assert.ErrorIs(t, err, apperrors.ErrUnknownColumn)
}

func TestFloats_CachedViewIsStable(t *testing.T) {
	ds, err := New([]string{"A"})
	require.NoError(t, err)
	require.NoError(t, ds.AppendRow([]string{"1"}))

	first, err := ds.Floats("A")
	require.NoError(t, err)
	second, err := ds.Floats("A")
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestIsNumeric(t *testing.T) {
	ds, err := New([]string{"Num", "Text"})
	require.NoError(t, err)
	require.NoError(t, ds.AppendRow([]string{"1.5", "abc"}))

	assert.True(t, ds.IsNumeric("Num"))
	assert.False(t, ds.IsNumeric("Text"))
	assert.False(t, ds.IsNumeric("Missing"))
}
