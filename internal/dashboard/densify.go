package dashboard

import (
	"sort"

	"engagement-dashboard/internal/model"
)

// Matrix is a two-key aggregation laid out as a full grid: every row key
// crossed with every column key.
type Matrix struct {
	RowKey    string             `json:"row_key"`
	ColumnKey string             `json:"column_key"`
	Rows      []string           `json:"rows"`
	Columns   []string           `json:"columns"`
	Cells     [][]model.OptFloat `json:"cells"` // Cells[row][column]
}

// Densify expands a two-key AggregateResult into a Matrix. Combinations
// absent from res take fill: model.Some(0) for counts, the zero OptFloat
// (rendered null) where a missing cell must stay missing. Rows keep the
// order of res; columns are sorted lexically.
func Densify(res *model.AggregateResult, fill model.OptFloat) Matrix {
	m := Matrix{Rows: []string{}, Columns: []string{}, Cells: [][]model.OptFloat{}}
	if res == nil || len(res.GroupBy) != 2 {
		return m
	}
	m.RowKey, m.ColumnKey = res.GroupBy[0], res.GroupBy[1]

	rowIdx := make(map[string]int)
	colSeen := make(map[string]bool)
	for _, r := range res.Rows {
		if _, ok := rowIdx[r.Keys[0]]; !ok {
			rowIdx[r.Keys[0]] = len(m.Rows)
			m.Rows = append(m.Rows, r.Keys[0])
		}
		if !colSeen[r.Keys[1]] {
			colSeen[r.Keys[1]] = true
			m.Columns = append(m.Columns, r.Keys[1])
		}
	}
	sort.Strings(m.Columns)
	colIdx := make(map[string]int, len(m.Columns))
	for i, c := range m.Columns {
		colIdx[c] = i
	}

	m.Cells = make([][]model.OptFloat, len(m.Rows))
	for i := range m.Cells {
		m.Cells[i] = make([]model.OptFloat, len(m.Columns))
		for j := range m.Cells[i] {
			m.Cells[i][j] = fill
		}
	}
	for _, r := range res.Rows {
		m.Cells[rowIdx[r.Keys[0]]][colIdx[r.Keys[1]]] = model.Some(r.Value)
	}
	return m
}

// Cell returns the value at (row, column); ok is false for unknown keys.
func (m Matrix) Cell(row, column string) (model.OptFloat, bool) {
	for i, r := range m.Rows {
		if r != row {
			continue
		}
		for j, c := range m.Columns {
			if c == column {
				return m.Cells[i][j], true
			}
		}
	}
	return model.OptFloat{}, false
}
