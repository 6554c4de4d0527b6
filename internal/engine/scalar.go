package engine

import "engagement-dashboard/internal/model"

// ScalarMean averages a measure over every row with a value. Zero values
// yield *EmptyAggregationError, never NaN.
func ScalarMean(t *model.Table, field string) (float64, error) {
	sum, n, err := fold(t, field)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, &EmptyAggregationError{Op: model.OpMean, Field: field}
	}
	return sum / float64(n), nil
}

// ScalarSum totals a measure; an empty table sums to 0.
func ScalarSum(t *model.Table, field string) (float64, error) {
	sum, _, err := fold(t, field)
	return sum, err
}

func fold(t *model.Table, field string) (float64, int, error) {
	m, err := Measure(field)
	if err != nil {
		return 0, 0, err
	}
	var sum float64
	n := 0
	if t == nil {
		return 0, 0, nil
	}
	for i := range t.Rows {
		if v, ok := m.Value(&t.Rows[i]); ok {
			sum += v
			n++
		}
	}
	return sum, n, nil
}
