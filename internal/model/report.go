package model

import "time"

// LoadReport summarises one DatasetLoader run
type LoadReport struct {
	Source            string         `json:"source"`
	RowsRead          int            `json:"rows_read"`
	RowsKept          int            `json:"rows_kept"`
	DroppedIncomplete int            `json:"dropped_incomplete"`
	DroppedDuplicates int            `json:"dropped_duplicates"`
	InvalidDates      int            `json:"invalid_dates"`
	FieldErrors       map[string]int `json:"field_errors"` // coercion or range failures per column
	HasDate           bool           `json:"has_date"`
	SyntheticDates    bool           `json:"synthetic_dates"`
	Stages            []StageMetrics `json:"stages"`
	Duration          time.Duration  `json:"duration"`
	LoadedAt          time.Time      `json:"loaded_at"`
}

// StageMetrics represents metrics for a specific load stage
type StageMetrics struct {
	StageName  string        `json:"stage_name"`
	StartTime  time.Time     `json:"start_time"`
	Duration   time.Duration `json:"duration"`
	RecordsIn  int           `json:"records_in"`
	RecordsOut int           `json:"records_out"`
}

// NoteFieldError counts one failed cell for a column.
func (r *LoadReport) NoteFieldError(column string) {
	if r.FieldErrors == nil {
		r.FieldErrors = make(map[string]int)
	}
	r.FieldErrors[column]++
}
