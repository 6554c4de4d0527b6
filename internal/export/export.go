// Package export writes a rendered dashboard to CSV, JSON or SQLite.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"engagement-dashboard/internal/dashboard"
	"engagement-dashboard/internal/logging"
	"engagement-dashboard/internal/model"
	"engagement-dashboard/internal/store"
	"engagement-dashboard/pkg/utils"
)

// Supported formats
const (
	FormatCSV    = "csv"
	FormatJSON   = "json"
	FormatSQLite = "sqlite"
)

// ExportResult represents the result of an export operation
type ExportResult struct {
	RunID       string    `json:"run_id"`
	Type        string    `json:"type"` // csv, json, sqlite
	Path        string    `json:"path"` // file path or database path
	RecordCount int       `json:"record_count"`
	ExportedAt  time.Time `json:"exported_at"`
}

// Options choose where an export goes.
type Options struct {
	Format string
	// Dir is the base output directory for file exports; each run gets
	// its own subdirectory.
	Dir string
	// SQLitePath is the database used by the sqlite format.
	SQLitePath string
}

// ExportManager handles data export operations for one run.
type ExportManager struct {
	RunID  string
	opts   Options
	output *utils.OutputManager
}

// NewExportManager starts a run with a fresh id.
func NewExportManager(opts Options) *ExportManager {
	return &ExportManager{
		RunID:  uuid.NewString(),
		opts:   opts,
		output: utils.NewOutputManager(opts.Dir),
	}
}

// Export writes the snapshot, tagged with the load report, in the
// configured format.
func (em *ExportManager) Export(ctx context.Context, snap *dashboard.Snapshot, report *model.LoadReport) (*ExportResult, error) {
	var (
		result *ExportResult
		err    error
	)
	switch strings.ToLower(em.opts.Format) {
	case FormatCSV:
		result, err = em.exportToCSV(snap)
	case FormatJSON, "":
		result, err = em.exportToJSON(snap, report)
	case FormatSQLite:
		result, err = em.exportToDatabase(ctx, snap, report)
	default:
		return nil, fmt.Errorf("unknown export format %q", em.opts.Format)
	}
	if err != nil {
		logging.Error().Err(err).Str("run_id", em.RunID).Str("format", em.opts.Format).Msg("export failed")
		return nil, err
	}

	logging.Info().
		Str("run_id", result.RunID).
		Str("type", result.Type).
		Str("path", result.Path).
		Int("records", result.RecordCount).
		Msg("export completed")
	return result, nil
}

func (em *ExportManager) newResult(kind, path string, count int) *ExportResult {
	return &ExportResult{RunID: em.RunID, Type: kind, Path: path, RecordCount: count, ExportedAt: time.Now().UTC()}
}

// exportToCSV writes every view row to <dir>/<run>/dashboard.csv in long
// format: view, key columns joined by "|", value, count.
func (em *ExportManager) exportToCSV(snap *dashboard.Snapshot) (*ExportResult, error) {
	path, err := em.output.GetOutputFilePath(em.RunID, "dashboard.csv")
	if err != nil {
		return nil, err
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"view", "keys", "value", "count"}); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	rows := Flatten(snap)
	for _, r := range rows {
		value := ""
		if r.Value.Valid {
			value = utils.FormatFloat(r.Value.Value)
		}
		if err := writer.Write([]string{r.View, strings.Join(r.Keys, "|"), value, strconv.Itoa(r.Count)}); err != nil {
			return nil, fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return em.newResult(FormatCSV, path, len(rows)), nil
}

// exportToJSON writes the snapshot with export metadata to
// <dir>/<run>/dashboard.json.
func (em *ExportManager) exportToJSON(snap *dashboard.Snapshot, report *model.LoadReport) (*ExportResult, error) {
	path, err := em.output.GetOutputFilePath(em.RunID, "dashboard.json")
	if err != nil {
		return nil, err
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	exportData := map[string]interface{}{
		"export_info": map[string]interface{}{
			"run_id":      em.RunID,
			"exported_at": time.Now().UTC(),
			"rows":        snap.Rows,
		},
		"load_report": report,
		"dashboard":   snap,
	}
	if err := encoder.Encode(exportData); err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return em.newResult(FormatJSON, path, snap.Rows), nil
}

// exportToDatabase stores the load report and every view row in SQLite.
func (em *ExportManager) exportToDatabase(ctx context.Context, snap *dashboard.Snapshot, report *model.LoadReport) (*ExportResult, error) {
	db, err := store.InitDB(em.opts.SQLitePath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if report != nil {
		if err := db.SaveLoadRun(ctx, em.RunID, report); err != nil {
			return nil, fmt.Errorf("failed to save load run: %w", err)
		}
	}

	flat := Flatten(snap)
	rows := make([]store.AggregateRow, len(flat))
	for i, r := range flat {
		rows[i] = store.AggregateRow{RunID: em.RunID, View: r.View, Keys: r.Keys, Value: r.Value, Count: r.Count}
	}
	n, err := db.SaveAggregateRows(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("failed to save aggregate rows: %w", err)
	}
	return em.newResult(FormatSQLite, em.opts.SQLitePath, n), nil
}
