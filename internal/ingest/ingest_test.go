package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tradelens/internal/errors"
)

func TestRead_BasicFile(t *testing.T) {
	ds, err := Read(strings.NewReader(
		"Ticker,Date,Gain %,MAE %\n" +
			"AAPL,2024-03-01,20,3\n" +
			"GOOGL,2024-03-01,-2,5\n"))
	require.NoError(t, err)

	assert.Equal(t, 2, ds.NumRows())
	assert.Equal(t, []string{"Ticker", "Date", "Gain %", "MAE %"}, ds.Columns())

	v, ok := ds.Value(1, "Ticker")
	assert.True(t, ok)
	assert.Equal(t, "GOOGL", v)
}

func TestRead_RaggedRowsArePadded(t *testing.T) {
	ds, err := Read(strings.NewReader(
		"A,B,C\n" +
			"1,2\n" +
			"3,4,5\n"))
	require.NoError(t, err)

	assert.Equal(t, 2, ds.NumRows())
	v, _ := ds.Value(0, "C")
	assert.Equal(t, "", v)
}

func TestRead_EmptyInput(t *testing.T) {
	_, err := Read(strings.NewReader(""))
	assert.ErrorIs(t, err, apperrors.ErrEmptyHeader)
}

func TestDetectMapping_Synonyms(t *testing.T) {
	ds, err := Read(strings.NewReader("Symbol,Trade Date,Entry Time,Return,Max Adverse Excursion,Outcome\n"))
	require.NoError(t, err)

	m := DetectMapping(ds)
	assert.Equal(t, "Symbol", m.Ticker)
	assert.Equal(t, "Trade Date", m.Date)
	assert.Equal(t, "Entry Time", m.Time)
	assert.Equal(t, "Return", m.GainPct)
	assert.Equal(t, "Max Adverse Excursion", m.MAEPct)
	assert.Equal(t, "Outcome", m.WinLoss)
}

func TestDetectMapping_CaseAndSeparatorInsensitive(t *testing.T) {
	ds, err := Read(strings.NewReader("TICKER,trade-date,gain_pct,MaePct\n"))
	require.NoError(t, err)

	m := DetectMapping(ds)
	assert.Equal(t, "TICKER", m.Ticker)
	assert.Equal(t, "trade-date", m.Date)
	assert.Equal(t, "gain_pct", m.GainPct)
	assert.Equal(t, "MaePct", m.MAEPct)
}

func TestDetectMapping_UnplacedRolesStayBlank(t *testing.T) {
	ds, err := Read(strings.NewReader("Foo,Bar\n"))
	require.NoError(t, err)

	m := DetectMapping(ds)
	assert.Empty(t, m.Ticker)
	assert.Empty(t, m.Date)
	assert.Empty(t, m.GainPct)
	assert.Empty(t, m.MAEPct)
}
