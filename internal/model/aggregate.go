package model

import "strings"

// Aggregation operations
const (
	OpMean        = "mean"
	OpSum         = "sum"
	OpCount       = "count"
	OpCountValues = "count_values"
)

// AggregateRow is one group of an aggregation: the group key values in
// GroupBy order, the measure value and the number of contributing rows.
type AggregateRow struct {
	Keys  []string `json:"keys"`
	Value float64  `json:"value"`
	Count int      `json:"count"`
}

// AggregateResult represents a grouped numeric summary of a table
type AggregateResult struct {
	Op      string         `json:"op"`
	GroupBy []string       `json:"group_by"`
	Measure string         `json:"measure,omitempty"`
	Rows    []AggregateRow `json:"rows"`
}

// Len returns the number of groups.
func (r *AggregateResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// Lookup finds the row for a full key combination.
func (r *AggregateResult) Lookup(keys ...string) (AggregateRow, bool) {
	if r == nil {
		return AggregateRow{}, false
	}
	want := strings.Join(keys, "\x1f")
	for _, row := range r.Rows {
		if strings.Join(row.Keys, "\x1f") == want {
			return row, true
		}
	}
	return AggregateRow{}, false
}

// Total sums Value over all groups.
func (r *AggregateResult) Total() float64 {
	var total float64
	if r == nil {
		return total
	}
	for _, row := range r.Rows {
		total += row.Value
	}
	return total
}

// DistributionRow is a five-number summary of one group.
type DistributionRow struct {
	Key    string  `json:"key"`
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// DistributionResult holds per-group distributions of a measure.
type DistributionResult struct {
	GroupBy string            `json:"group_by"`
	Measure string            `json:"measure"`
	Rows    []DistributionRow `json:"rows"`
}
