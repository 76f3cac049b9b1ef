// Package period resolves which ranking snapshot a query should use when the
// caller gives an incomplete (year, month) pair.
package period

import (
	"github.com/openbi/rankindex/internal/domain/model"
)

// Resolve picks the period to serve out of the periods available in scope.
// A zero year or month means "not given".
//
// Rules:
//   - year and month given: exact membership, ErrNotFound otherwise.
//   - year only: the latest month within that year (an unspecified month
//     sorts lowest), ErrNotFound when the year has no data.
//   - month only: the newest year carrying that month.
//   - neither: the single latest available period.
func Resolve(available []model.Period, year, month int) (model.Period, error) {
	if len(available) == 0 {
		return model.Period{}, ErrNotFound
	}

	switch {
	case year != 0 && month != 0:
		want := model.Period{Year: year, Month: month}
		for _, p := range available {
			if p == want {
				return p, nil
			}
		}
		return model.Period{}, ErrNotFound

	case year != 0:
		return latest(available, func(p model.Period) bool { return p.Year == year })

	case month != 0:
		return latest(available, func(p model.Period) bool { return p.Month == month })

	default:
		return latest(available, func(model.Period) bool { return true })
	}
}

// latest returns the chronologically newest period satisfying keep.
func latest(available []model.Period, keep func(model.Period) bool) (model.Period, error) {
	var best model.Period
	found := false
	for _, p := range available {
		if !keep(p) {
			continue
		}
		if !found || best.Before(p) {
			best = p
			found = true
		}
	}
	if !found {
		return model.Period{}, ErrNotFound
	}
	return best, nil
}
