package pipeline

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// GenericRecord is one source row keyed by cleaned header name.
type GenericRecord map[string]string

// Get returns the trimmed cell for a column; absent columns read as "".
func (r GenericRecord) Get(column string) string {
	return strings.TrimSpace(r[column])
}

// ingestion holds everything read from the source before validation.
type ingestion struct {
	Header  []string
	Records []GenericRecord
}

// ingestFile opens a local delimited file and reads it completely.
func ingestFile(ctx context.Context, path string) (*ingestion, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	defer file.Close()

	return ingestCSV(ctx, path, file)
}

func ingestCSV(ctx context.Context, source string, reader io.Reader) (*ingestion, error) {
	csvReader := csv.NewReader(reader)
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1 // short rows read as missing cells

	headers, err := csvReader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &LoadError{Source: source, Err: errors.New("empty file: no header row")}
	}
	if err != nil {
		return nil, &LoadError{Source: source, Err: fmt.Errorf("failed to read CSV header: %w", err)}
	}

	for i, h := range headers {
		headers[i] = cleanHeader(h, i == 0)
	}

	out := &ingestion{Header: headers}
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("ingestion cancelled: %w", err)
		}

		record, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &LoadError{Source: source, Err: fmt.Errorf("CSV read error: %w", err)}
		}

		rec := make(GenericRecord, len(headers))
		for i, h := range headers {
			if h == "" || i >= len(record) {
				continue
			}
			rec[h] = record[i]
		}
		out.Records = append(out.Records, rec)
	}
	return out, nil
}

// cleanHeader trims whitespace and removes all quotes (and a leading BOM).
func cleanHeader(h string, first bool) string {
	if first {
		h = strings.TrimPrefix(h, "\ufeff")
	}
	h = strings.TrimSpace(h)
	return strings.ReplaceAll(h, `"`, "")
}
