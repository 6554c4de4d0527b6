// Package engine filters the cleaned table and computes grouped and scalar
// summaries over it. Every function is pure: inputs are never modified and
// equal inputs give equal outputs.
package engine

import (
	"sort"

	"engagement-dashboard/internal/model"
)

// Filter returns a new table with the rows that satisfy spec, in their
// original order. The input table is left untouched.
func Filter(t *model.Table, spec model.FilterSpec) *model.Table {
	if t == nil {
		return model.NewTable(nil, false)
	}
	rows := make([]model.Record, 0, len(t.Rows))
	if !spec.Empty() {
		for i := range t.Rows {
			if spec.Matches(&t.Rows[i]) {
				rows = append(rows, t.Rows[i])
			}
		}
	}
	return model.NewTable(rows, t.HasDate)
}

// Distinct returns the sorted distinct values of a dimension, in the
// dimension's own order.
func Distinct(t *model.Table, field string) ([]string, error) {
	f, err := Dimension(field)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	out := []string{}
	if t != nil {
		for i := range t.Rows {
			k, ok := f.Key(&t.Rows[i])
			if ok && !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return f.Less(out[i], out[j]) })
	return out, nil
}

// AgeBounds returns the smallest and largest Age; ok is false for an
// empty table.
func AgeBounds(t *model.Table) (minAge, maxAge int, ok bool) {
	if t.Len() == 0 {
		return 0, 0, false
	}
	minAge, maxAge = t.Rows[0].Age, t.Rows[0].Age
	for _, r := range t.Rows[1:] {
		minAge = min(minAge, r.Age)
		maxAge = max(maxAge, r.Age)
	}
	return minAge, maxAge, true
}
