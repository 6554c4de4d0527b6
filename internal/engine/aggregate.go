package engine

import (
	"math"
	"sort"
	"strings"

	"engagement-dashboard/internal/model"
)

// group accumulates one key combination.
type group struct {
	keys   []string
	rows   int
	values int
	sum    float64
	all    []float64 // only kept for distributions
}

// aggregator groups records by a list of dimensions, folding an optional
// measure into each group.
type aggregator struct {
	keys    []*Field
	measure *Field
	keepAll bool
	results map[string]*group
}

func newAggregator(keys []*Field, measure *Field) *aggregator {
	return &aggregator{keys: keys, measure: measure, results: make(map[string]*group)}
}

// processRecord adds one record to its group. A dimension the record has
// no value for (no date, age outside every bin) contributes Unclassified,
// so every record lands in exactly one group.
func (a *aggregator) processRecord(r *model.Record) {
	keys := make([]string, len(a.keys))
	for i, f := range a.keys {
		k, ok := f.Key(r)
		if !ok {
			k = Unclassified
		}
		keys[i] = k
	}
	id := strings.Join(keys, "\x1f")

	g, exists := a.results[id]
	if !exists {
		g = &group{keys: keys}
		a.results[id] = g
	}
	g.rows++

	if a.measure == nil {
		return
	}
	v, ok := a.measure.Value(r)
	if !ok {
		return
	}
	g.values++
	g.sum += v
	if a.keepAll {
		g.all = append(g.all, v)
	}
}

func (a *aggregator) run(t *model.Table) []*group {
	if t != nil {
		for i := range t.Rows {
			a.processRecord(&t.Rows[i])
		}
	}
	out := make([]*group, 0, len(a.results))
	for _, g := range a.results {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		return keysLess(a.keys, out[i].keys, out[j].keys)
	})
	return out
}

// keysLess orders by each dimension in turn; Unclassified sorts last.
func keysLess(fields []*Field, a, b []string) bool {
	for i, f := range fields {
		switch {
		case a[i] == b[i]:
			continue
		case a[i] == Unclassified:
			return false
		case b[i] == Unclassified:
			return true
		}
		return f.Less(a[i], b[i])
	}
	return false
}

func prepare(measure string, keys []string) ([]*Field, *Field, error) {
	dims, err := dimensions(keys)
	if err != nil {
		return nil, nil, err
	}
	if measure == "" {
		return dims, nil, nil
	}
	m, err := Measure(measure)
	if err != nil {
		return nil, nil, err
	}
	return dims, m, nil
}

// MeanBy returns the mean of measure per groupKey value. Groups with no
// measure values are left out.
func MeanBy(t *model.Table, groupKey, measure string) (*model.AggregateResult, error) {
	return MeanByKeys(t, measure, groupKey)
}

// MeanByKeys is MeanBy over a combination of dimensions.
func MeanByKeys(t *model.Table, measure string, keys ...string) (*model.AggregateResult, error) {
	dims, m, err := prepare(measure, keys)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, &UnknownFieldError{Field: measure, Role: "measure"}
	}

	result := newResult(model.OpMean, keys, measure)
	for _, g := range newAggregator(dims, m).run(t) {
		if g.values == 0 {
			continue
		}
		result.Rows = append(result.Rows, model.AggregateRow{Keys: g.keys, Value: g.sum / float64(g.values), Count: g.values})
	}
	return result, nil
}

// SumBy returns the sum of measure per groupKey value. A group whose
// measure values are all missing sums to 0.
func SumBy(t *model.Table, groupKey, measure string) (*model.AggregateResult, error) {
	dims, m, err := prepare(measure, []string{groupKey})
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, &UnknownFieldError{Field: measure, Role: "measure"}
	}

	result := newResult(model.OpSum, []string{groupKey}, measure)
	for _, g := range newAggregator(dims, m).run(t) {
		result.Rows = append(result.Rows, model.AggregateRow{Keys: g.keys, Value: g.sum, Count: g.values})
	}
	return result, nil
}

// CountBy counts rows per observed key combination. Combinations that do
// not occur are absent.
func CountBy(t *model.Table, keys ...string) (*model.AggregateResult, error) {
	dims, err := dimensions(keys)
	if err != nil {
		return nil, err
	}

	result := newResult(model.OpCount, keys, "")
	for _, g := range newAggregator(dims, nil).run(t) {
		result.Rows = append(result.Rows, model.AggregateRow{Keys: g.keys, Value: float64(g.rows), Count: g.rows})
	}
	return result, nil
}

// CountValuesBy counts non-missing measure values per key combination.
// Observed combinations without any value report 0.
func CountValuesBy(t *model.Table, measure string, keys ...string) (*model.AggregateResult, error) {
	dims, m, err := prepare(measure, keys)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, &UnknownFieldError{Field: measure, Role: "measure"}
	}

	result := newResult(model.OpCountValues, keys, measure)
	for _, g := range newAggregator(dims, m).run(t) {
		result.Rows = append(result.Rows, model.AggregateRow{Keys: g.keys, Value: float64(g.values), Count: g.values})
	}
	return result, nil
}

// DistributionBy summarises measure per groupKey value with min, quartiles
// and max. Quartiles interpolate linearly between order statistics.
func DistributionBy(t *model.Table, groupKey, measure string) (*model.DistributionResult, error) {
	dims, m, err := prepare(measure, []string{groupKey})
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, &UnknownFieldError{Field: measure, Role: "measure"}
	}

	agg := newAggregator(dims, m)
	agg.keepAll = true

	result := &model.DistributionResult{GroupBy: groupKey, Measure: measure, Rows: []model.DistributionRow{}}
	for _, g := range agg.run(t) {
		if len(g.all) == 0 {
			continue
		}
		sort.Float64s(g.all)
		result.Rows = append(result.Rows, model.DistributionRow{
			Key:    g.keys[0],
			Count:  len(g.all),
			Min:    g.all[0],
			Q1:     quantile(g.all, 0.25),
			Median: quantile(g.all, 0.5),
			Q3:     quantile(g.all, 0.75),
			Max:    g.all[len(g.all)-1],
		})
	}
	return result, nil
}

// quantile reads q from sorted values, interpolating between neighbours.
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := math.Floor(pos)
	hi := math.Ceil(pos)
	if lo == hi {
		return sorted[int(lo)]
	}
	return sorted[int(lo)] + (pos-lo)*(sorted[int(hi)]-sorted[int(lo)])
}

func newResult(op string, keys []string, measure string) *model.AggregateResult {
	groupBy := make([]string, len(keys))
	copy(groupBy, keys)
	return &model.AggregateResult{
		Op:      op,
		GroupBy: groupBy,
		Measure: measure,
		Rows:    []model.AggregateRow{},
	}
}
