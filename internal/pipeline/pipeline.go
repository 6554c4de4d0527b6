// Package pipeline loads the usage CSV into a cleaned, immutable table.
//
// Stages run in order: ingest, validate, transform, dedupe, derive. Each
// stage is timed into the returned LoadReport.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"engagement-dashboard/internal/logging"
	"engagement-dashboard/internal/metrics"
	"engagement-dashboard/internal/model"
)

// Options tune a load. The zero value uses DefaultRules and DefaultDateLayouts.
type Options struct {
	DateLayouts []string
	// SyntheticStart, when set and the source has no Date column, dates the
	// i-th cleaned row start + i days.
	SyntheticStart      time.Time
	NormalizeCategories bool
	Rules               *ValidationRules
}

// Load reads the file at path and returns the cleaned table. Errors are
// *LoadError or *SchemaError; both are fatal for the session.
func Load(ctx context.Context, path string, opts Options) (*model.Table, *model.LoadReport, error) {
	return run(ctx, path, opts, func(ctx context.Context) (*ingestion, error) {
		return ingestFile(ctx, path)
	})
}

// LoadReader is Load over an already open reader; source names it in errors.
func LoadReader(ctx context.Context, source string, r io.Reader, opts Options) (*model.Table, *model.LoadReport, error) {
	return run(ctx, source, opts, func(ctx context.Context) (*ingestion, error) {
		return ingestCSV(ctx, source, r)
	})
}

func run(ctx context.Context, source string, opts Options, ingest func(context.Context) (*ingestion, error)) (_ *model.Table, _ *model.LoadReport, err error) {
	start := time.Now()
	report := &model.LoadReport{Source: source, LoadedAt: start}
	tracker := newStageTracker(report)

	defer func() {
		report.Duration = time.Since(start)
		if err != nil {
			metrics.LoadErrors.WithLabelValues(errorKind(err)).Inc()
			logging.Error().Err(err).Str("source", source).Msg("dataset load failed")
			return
		}
		metrics.LoadDuration.Observe(report.Duration.Seconds())
	}()

	// --- INGESTION STAGE ---
	tracker.StartStage("ingestion", 0)
	in, err := ingest(ctx)
	if err != nil {
		return nil, report, err
	}
	report.RowsRead = len(in.Records)
	tracker.EndStage(len(in.Records))

	// --- VALIDATION STAGE ---
	tracker.StartStage("validation", len(in.Records))
	if err := checkSchema(source, in.Header); err != nil {
		return nil, report, err
	}
	rules := DefaultRules()
	if opts.Rules != nil {
		rules = *opts.Rules
	}
	v := newValidator(rules, report)

	type validated struct {
		raw GenericRecord
		rec model.Record
	}
	kept := make([]validated, 0, len(in.Records))
	for i, raw := range in.Records {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, report, fmt.Errorf("validation cancelled: %w", err)
			}
		}
		rec, ok := v.validateRecord(raw)
		if !ok {
			report.DroppedIncomplete++
			continue
		}
		kept = append(kept, validated{raw: raw, rec: rec})
	}
	tracker.EndStage(len(kept))

	// --- TRANSFORMATION STAGE ---
	tracker.StartStage("transformation", len(kept))
	report.HasDate = hasColumn(in.Header, model.ColDate)
	tf := newTransformer(opts, report.HasDate, report)
	rows := make([]model.Record, len(kept))
	for i := range kept {
		rows[i] = kept[i].rec
		tf.applyTransformations(kept[i].raw, &rows[i])
	}
	tracker.EndStage(len(rows))

	// --- DEDUPLICATION STAGE ---
	tracker.StartStage("deduplication", len(rows))
	deduped := dedupeRecords(rows)
	report.DroppedDuplicates = len(rows) - len(deduped)
	tracker.EndStage(len(deduped))

	// --- DERIVATION STAGE ---
	tracker.StartStage("derivation", len(deduped))
	if !report.HasDate && !opts.SyntheticStart.IsZero() {
		assignSyntheticDates(deduped, opts.SyntheticStart)
		report.SyntheticDates = true
	}
	for i := range deduped {
		deduped[i].Derive()
	}
	tracker.EndStage(len(deduped))

	report.RowsKept = len(deduped)
	table := model.NewTable(deduped, report.HasDate || report.SyntheticDates)

	logging.Info().
		Str("source", source).
		Int("rows_read", report.RowsRead).
		Int("rows_kept", report.RowsKept).
		Int("dropped_incomplete", report.DroppedIncomplete).
		Int("dropped_duplicates", report.DroppedDuplicates).
		Int("invalid_dates", report.InvalidDates).
		Bool("has_date", table.HasDate).
		Dur("duration", time.Since(start)).
		Msg("dataset loaded")

	return table, report, nil
}

func hasColumn(header []string, col string) bool {
	for _, h := range header {
		if h == col {
			return true
		}
	}
	return false
}

func errorKind(err error) string {
	var schemaErr *SchemaError
	var loadErr *LoadError
	switch {
	case errors.As(err, &schemaErr):
		return "schema"
	case errors.As(err, &loadErr):
		return "load"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "other"
	}
}
