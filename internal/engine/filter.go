package engine

import (
	"fmt"

	"tradelens/internal/dataset"
	"tradelens/internal/errors"
	"tradelens/internal/models"
)

// ValidateFilters checks an entire filter set in one pass: bounds ordering,
// column existence and numeric parseability. Every problem is collected so a
// caller can display the full list at once; nothing is evaluated until the
// whole set is clean.
func ValidateFilters(ds *dataset.Dataset, filters []models.FilterCriteria) error {
	var verrs errors.ValidationErrors

	if len(filters) > models.MaxFilterCriteria {
		verrs.Addf("filters", len(filters), errors.ErrTooManyFilters,
			"at most %d criteria allowed", models.MaxFilterCriteria)
	}

	for i, f := range filters {
		field := fmt.Sprintf("filters[%d]", i)
		if f.Operator != models.Between && f.Operator != models.NotBetween {
			verrs.Addf(field, string(f.Operator), errors.ErrConfigInvalid, "unknown operator")
		}
		if f.MinVal > f.MaxVal {
			verrs.Addf(field, f.Column, errors.ErrInvalidRange,
				"min %v exceeds max %v", f.MinVal, f.MaxVal)
		}
		if !ds.HasColumn(f.Column) {
			verrs.Addf(field, f.Column, errors.ErrUnknownColumn, "column not in dataset")
			continue
		}
		if !ds.IsNumeric(f.Column) {
			verrs.Addf(field, f.Column, errors.ErrNonNumericColumn, "column must be numeric")
		}
	}
	return verrs.ErrOrNil()
}

// ApplyFilters evaluates the ANDed criteria list against every row and
// returns the boolean selection mask. Zero criteria yields the all-true mask.
// Rows whose cell is blank in any referenced column never satisfy that
// criterion. The set must have passed ValidateFilters first.
func ApplyFilters(ds *dataset.Dataset, filters []models.FilterCriteria) ([]bool, error) {
	mask := make([]bool, ds.NumRows())
	for i := range mask {
		mask[i] = true
	}

	for _, f := range filters {
		col, err := ds.Floats(f.Column)
		if err != nil {
			return nil, err
		}
		for row := range mask {
			if !mask[row] {
				continue
			}
			if !col.Valid[row] || !f.Matches(col.Values[row]) {
				mask[row] = false
			}
		}
	}
	return mask, nil
}
