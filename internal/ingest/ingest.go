// Package ingest loads tabular trade records and proposes column mappings.
package ingest

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"tradelens/internal/dataset"
	"tradelens/internal/errors"
	"tradelens/internal/models"
)

// LoadCSV reads a CSV file into a dataset. The first record is the header;
// the column set is open, so cells stay raw strings until a numeric view is
// requested.
func LoadCSV(path string) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()
	return Read(f)
}

// Read builds a dataset from CSV content.
func Read(r io.Reader) (*dataset.Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.ErrEmptyHeader
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading header")
	}

	ds, err := dataset.New(header)
	if err != nil {
		return nil, err
	}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading row %d", ds.NumRows()+1)
		}
		if err := ds.AppendRow(record); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// roleSynonyms maps each logical role to the header names it is commonly
// published under. Matching is case-insensitive and ignores spaces and
// underscores.
var roleSynonyms = map[string][]string{
	"ticker":   {"ticker", "symbol", "stock", "instrument"},
	"date":     {"date", "trade_date", "signal_date", "day"},
	"time":     {"time", "trigger_time", "signal_time", "entry_time"},
	"gain_pct": {"gain_pct", "gain", "gain_percent", "return_pct", "return", "pnl_pct"},
	"mae_pct":  {"mae_pct", "mae", "max_adverse_excursion", "maxdrawdown_pct", "adverse_pct"},
	"win_loss": {"win_loss", "winloss", "outcome", "result"},
}

// DetectMapping walks the dataset header and proposes a ColumnMapping using
// synonym heuristics. Roles it cannot place stay blank; the caller decides
// whether the proposal is complete enough via engine validation.
func DetectMapping(ds *dataset.Dataset) models.ColumnMapping {
	normalized := make(map[string]string)
	for _, col := range ds.Columns() {
		key := normalizeHeader(col)
		if _, taken := normalized[key]; !taken {
			normalized[key] = col
		}
	}

	pick := func(role string) string {
		for _, syn := range roleSynonyms[role] {
			if col, ok := normalized[normalizeHeader(syn)]; ok {
				return col
			}
		}
		return ""
	}

	return models.ColumnMapping{
		Ticker:  pick("ticker"),
		Date:    pick("date"),
		Time:    pick("time"),
		GainPct: pick("gain_pct"),
		MAEPct:  pick("mae_pct"),
		WinLoss: pick("win_loss"),
	}
}

func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, "-", "")
	return s
}
