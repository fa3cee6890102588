// Package ranking holds the ordering and extremum helpers shared by the
// aggregation passes. Every helper is pure and keeps input order on ties.
package ranking

import (
	"cmp"
	"errors"
	"sort"

	"github.com/shopspring/decimal"
)

// ErrNoData is returned by extremum queries over an empty collection.
var ErrNoData = errors.New("no data")

var hundred = decimal.NewFromInt(100)

// TopN returns up to n items ordered by descending score. Items with equal
// scores keep their original relative order. The input is not modified.
func TopN[T any, S cmp.Ordered](items []T, score func(T) S, n int) []T {
	if n <= 0 || len(items) == 0 {
		return []T{}
	}
	sorted := make([]T, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return score(sorted[i]) > score(sorted[j])
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// ArgMax returns the first item with the highest score.
func ArgMax[T any, S cmp.Ordered](items []T, score func(T) S) (T, error) {
	var best T
	if len(items) == 0 {
		return best, ErrNoData
	}
	best = items[0]
	for _, item := range items[1:] {
		if score(item) > score(best) {
			best = item
		}
	}
	return best, nil
}

// ArgMin returns the first item with the lowest score among those accepted by
// keep. A nil keep accepts everything.
func ArgMin[T any, S cmp.Ordered](items []T, score func(T) S, keep func(T) bool) (T, error) {
	var best T
	found := false
	for _, item := range items {
		if keep != nil && !keep(item) {
			continue
		}
		if !found || score(item) < score(best) {
			best = item
			found = true
		}
	}
	if !found {
		return best, ErrNoData
	}
	return best, nil
}

// Percentage returns numerator/denominator*100 rounded to one decimal place,
// or zero when denominator is zero.
func Percentage(numerator, denominator int64) decimal.Decimal {
	if denominator == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(numerator).Mul(hundred).Div(decimal.NewFromInt(denominator)).Round(1)
}

// Ratio returns numerator/denominator unrounded, or zero when denominator is zero.
func Ratio(numerator, denominator int64) decimal.Decimal {
	if denominator == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(numerator).Div(decimal.NewFromInt(denominator))
}
