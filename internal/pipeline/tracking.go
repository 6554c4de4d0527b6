package pipeline

import (
	"time"

	"engagement-dashboard/internal/logging"
	"engagement-dashboard/internal/metrics"
	"engagement-dashboard/internal/model"
)

// stageTracker times each load stage and records it in the report.
type stageTracker struct {
	report  *model.LoadReport
	current *model.StageMetrics
}

func newStageTracker(report *model.LoadReport) *stageTracker {
	return &stageTracker{report: report}
}

// StartStage marks the start of a stage fed with recordsIn rows.
func (st *stageTracker) StartStage(stage string, recordsIn int) {
	st.current = &model.StageMetrics{
		StageName: stage,
		StartTime: time.Now(),
		RecordsIn: recordsIn,
	}
}

// EndStage closes the running stage.
func (st *stageTracker) EndStage(recordsOut int) {
	if st.current == nil {
		return
	}
	s := *st.current
	s.Duration = time.Since(s.StartTime)
	s.RecordsOut = recordsOut
	st.report.Stages = append(st.report.Stages, s)
	st.current = nil

	metrics.RowsProcessed.WithLabelValues(s.StageName).Add(float64(recordsOut))
	logging.Debug().
		Str("source", st.report.Source).
		Str("stage", s.StageName).
		Int("records_in", s.RecordsIn).
		Int("records_out", s.RecordsOut).
		Dur("duration", s.Duration).
		Msg("load stage completed")
}
