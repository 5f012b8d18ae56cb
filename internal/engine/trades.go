package engine

import (
	"strings"
	"time"

	"tradelens/internal/dataset"
	"tradelens/internal/errors"
	"tradelens/internal/models"
)

// dateLayouts are tried in order when parsing the date column.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02-Jan-2006",
	time.RFC3339,
}

// timeLayouts are tried in order when parsing the optional time-of-day column.
var timeLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04 PM",
	"3:04:05 PM",
}

// ValidateMapping checks that every required role resolves to an existing
// column and that the gain and MAE columns are numeric. All problems are
// collected and returned together.
func ValidateMapping(ds *dataset.Dataset, mapping models.ColumnMapping) error {
	var verrs errors.ValidationErrors

	for role, column := range mapping.RequiredRoles() {
		if column == "" {
			verrs.Addf(role, nil, errors.ErrMissingColumn, "no column mapped")
			continue
		}
		if !ds.HasColumn(column) {
			verrs.Addf(role, column, errors.ErrUnknownColumn, "column not in dataset")
		}
	}
	for _, optional := range []struct{ role, column string }{
		{"time", mapping.Time},
		{"win_loss", mapping.WinLoss},
	} {
		if optional.column != "" && !ds.HasColumn(optional.column) {
			verrs.Addf(optional.role, optional.column, errors.ErrUnknownColumn, "column not in dataset")
		}
	}
	// numeric checks run on whichever roles did resolve, so one pass reports
	// a missing ticker and a non-numeric gain column together
	for _, numeric := range []struct{ role, column string }{
		{"gain_pct", mapping.GainPct},
		{"mae_pct", mapping.MAEPct},
	} {
		if numeric.column == "" || !ds.HasColumn(numeric.column) {
			continue
		}
		if !ds.IsNumeric(numeric.column) {
			verrs.Addf(numeric.role, numeric.column, errors.ErrNonNumericColumn, "column must be numeric")
		}
	}
	return verrs.ErrOrNil()
}

// bindTrades materializes the mapped roles of every dataset row. The mapping
// must already have passed ValidateMapping; unparseable dates and blank gain
// or MAE cells still surface as data errors here, because column-level
// validation cannot see them (blank cells do not fail the numeric check).
func bindTrades(ds *dataset.Dataset, mapping models.ColumnMapping) ([]models.Trade, error) {
	gains, err := ds.Floats(mapping.GainPct)
	if err != nil {
		return nil, err
	}
	maes, err := ds.Floats(mapping.MAEPct)
	if err != nil {
		return nil, err
	}

	trades := make([]models.Trade, 0, ds.NumRows())
	for row := 0; row < ds.NumRows(); row++ {
		ticker, _ := ds.Value(row, mapping.Ticker)
		ticker = strings.TrimSpace(ticker)

		rawDate, _ := ds.Value(row, mapping.Date)
		date, err := parseDate(rawDate)
		if err != nil {
			return nil, errors.NewDataError(mapping.Date, row, "unparseable date "+rawDate, errors.ErrInvalidDate)
		}

		// blank gain or MAE cells are data defects, not zero-gain trades
		if !gains.Valid[row] {
			return nil, errors.NewDataError(mapping.GainPct, row, "blank cell in required column", errors.ErrMissingValue)
		}
		if !maes.Valid[row] {
			return nil, errors.NewDataError(mapping.MAEPct, row, "blank cell in required column", errors.ErrMissingValue)
		}

		t := models.Trade{
			Row:     row,
			Ticker:  ticker,
			Date:    date,
			GainPct: gains.Values[row],
			MAEPct:  maes.Values[row],
		}

		if mapping.Time != "" {
			if raw, ok := ds.Value(row, mapping.Time); ok {
				if tod, ok := parseTimeOfDay(raw); ok {
					t.TimeOfDay = tod
					t.HasTime = true
				}
			}
		}
		trades = append(trades, t)
	}
	return trades, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range dateLayouts {
		d, err := time.Parse(layout, s)
		if err == nil {
			// normalize to the calendar date, dropping any clock component
			return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// parseTimeOfDay returns the offset from midnight. Blank or unparseable
// values are treated as missing, which sorts earliest in the resolver.
func parseTimeOfDay(s string) (time.Duration, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, true
		}
	}
	return 0, false
}
