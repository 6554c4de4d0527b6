// Package session owns one loaded dataset and serves filtered renders and
// aggregations over it. A Session is safe for concurrent use: the table is
// never modified after Open.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"engagement-dashboard/internal/dashboard"
	"engagement-dashboard/internal/engine"
	"engagement-dashboard/internal/logging"
	"engagement-dashboard/internal/metrics"
	"engagement-dashboard/internal/model"
	"engagement-dashboard/internal/pipeline"
)

// ErrInvalidRequest marks errors caused by the request itself.
var ErrInvalidRequest = errors.New("invalid request")

// Session is one loaded dataset.
type Session struct {
	ID     string
	table  *model.Table
	report *model.LoadReport
}

// Options are the widget choices derived from the dataset.
type Options struct {
	Genders     []string `json:"genders"`
	Professions []string `json:"professions"`
	Locations   []string `json:"locations"`
	Platforms   []string `json:"platforms"`
	DeviceTypes []string `json:"device_types"`
	AgeMin      int      `json:"age_min"`
	AgeMax      int      `json:"age_max"`
	HasDate     bool     `json:"has_date"`
	Dimensions  []string `json:"dimensions"`
	Measures    []string `json:"measures"`
}

// Open loads the dataset at path.
func Open(ctx context.Context, path string, opts pipeline.Options) (*Session, error) {
	table, report, err := pipeline.Load(ctx, path, opts)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	return New(table, report), nil
}

// New wraps an already loaded table.
func New(table *model.Table, report *model.LoadReport) *Session {
	s := &Session{ID: uuid.NewString(), table: table, report: report}
	logging.Info().Str("session_id", s.ID).Int("rows", table.Len()).Msg("session opened")
	return s
}

// Table returns the cleaned table. Callers must not modify it.
func (s *Session) Table() *model.Table {
	return s.table
}

// Report returns the load report.
func (s *Session) Report() *model.LoadReport {
	return s.report
}

// Options lists the values each filter widget offers.
func (s *Session) Options() (*Options, error) {
	o := &Options{HasDate: s.table.HasDate, Dimensions: engine.Dimensions(), Measures: engine.Measures()}
	for _, d := range []struct {
		field string
		dst   *[]string
	}{
		{model.ColGender, &o.Genders},
		{model.ColProfession, &o.Professions},
		{model.ColLocation, &o.Locations},
		{model.ColPlatform, &o.Platforms},
		{model.ColDeviceType, &o.DeviceTypes},
	} {
		values, err := engine.Distinct(s.table, d.field)
		if err != nil {
			return nil, err
		}
		*d.dst = values
	}
	o.AgeMin, o.AgeMax, _ = engine.AgeBounds(s.table)
	return o, nil
}

// Resolve turns a client filter request into a FilterSpec. Absent lists
// select every observed value; absent age bounds take the dataset range.
func (s *Session) Resolve(req model.FilterRequest) (model.FilterSpec, error) {
	all := model.AllowAll(s.table)
	pick := func(requested []string, dim string) []string {
		if requested == nil {
			return all.Allowed(dim)
		}
		return requested
	}

	lo, hi := all.AgeRange()
	if req.AgeMin != nil {
		lo = *req.AgeMin
	}
	if req.AgeMax != nil {
		hi = *req.AgeMax
	}

	spec, err := model.NewFilterSpec(model.Selection{
		Genders:     pick(req.Genders, model.ColGender),
		Professions: pick(req.Professions, model.ColProfession),
		Locations:   pick(req.Locations, model.ColLocation),
		Platforms:   pick(req.Platforms, model.ColPlatform),
		DeviceTypes: pick(req.DeviceTypes, model.ColDeviceType),
		AgeMin:      lo,
		AgeMax:      hi,
	})
	if err != nil {
		return model.FilterSpec{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return spec, nil
}

// Filter applies a request to the table.
func (s *Session) Filter(req model.FilterRequest) (*model.Table, error) {
	spec, err := s.Resolve(req)
	if err != nil {
		return nil, err
	}
	filtered := engine.Filter(s.table, spec)
	metrics.FilteredRows.Observe(float64(filtered.Len()))
	return filtered, nil
}

// Render builds every dashboard view over the filtered table.
func (s *Session) Render(ctx context.Context, req model.RenderRequest) (*dashboard.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	filtered, err := s.Filter(req.Filter)
	if err != nil {
		return nil, err
	}
	snap, err := dashboard.Build(filtered, dashboard.BuildOptions{SelectedPlatforms: req.SelectedPlatforms})
	if err != nil {
		return nil, err
	}

	metrics.Renders.Inc()
	logging.Debug().
		Str("session_id", s.ID).
		Int("rows", filtered.Len()).
		Dur("duration", time.Since(start)).
		Msg("dashboard rendered")
	return snap, nil
}

// AggregateResponse holds exactly one of the result shapes.
type AggregateResponse struct {
	Result       *model.AggregateResult    `json:"result,omitempty"`
	Distribution *model.DistributionResult `json:"distribution,omitempty"`
	Scalar       *model.ScalarResult       `json:"scalar,omitempty"`
}

// Aggregate runs one ad-hoc aggregation. An empty scalar mean comes back
// as a ScalarResult with NoData set, not as an error.
func (s *Session) Aggregate(ctx context.Context, req model.AggregateRequest) (*AggregateResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	filtered, err := s.Filter(req.Filter)
	if err != nil {
		return nil, err
	}

	resp, err := aggregate(filtered, req)
	if err != nil {
		metrics.AggregationErrors.WithLabelValues(req.Op, errorKind(err)).Inc()
		return nil, err
	}
	return resp, nil
}

func aggregate(t *model.Table, req model.AggregateRequest) (*AggregateResponse, error) {
	single := func() (string, error) {
		if len(req.GroupBy) != 1 {
			return "", fmt.Errorf("%w: %s needs exactly one group_by field, got %d", ErrInvalidRequest, req.Op, len(req.GroupBy))
		}
		return req.GroupBy[0], nil
	}

	switch req.Op {
	case model.OpMean:
		res, err := engine.MeanByKeys(t, req.Measure, req.GroupBy...)
		return &AggregateResponse{Result: res}, err
	case model.OpSum:
		key, err := single()
		if err != nil {
			return nil, err
		}
		res, err := engine.SumBy(t, key, req.Measure)
		return &AggregateResponse{Result: res}, err
	case model.OpCount:
		res, err := engine.CountBy(t, req.GroupBy...)
		return &AggregateResponse{Result: res}, err
	case model.OpCountValues:
		res, err := engine.CountValuesBy(t, req.Measure, req.GroupBy...)
		return &AggregateResponse{Result: res}, err
	case model.OpDistribution:
		key, err := single()
		if err != nil {
			return nil, err
		}
		res, err := engine.DistributionBy(t, key, req.Measure)
		return &AggregateResponse{Distribution: res}, err
	case model.OpScalarMean:
		out := &model.ScalarResult{Op: req.Op, Measure: req.Measure}
		v, err := engine.ScalarMean(t, req.Measure)
		var empty *engine.EmptyAggregationError
		switch {
		case errors.As(err, &empty):
			out.NoData = true
		case err != nil:
			return nil, err
		default:
			out.Value = &v
		}
		return &AggregateResponse{Scalar: out}, nil
	case model.OpScalarSum:
		v, err := engine.ScalarSum(t, req.Measure)
		if err != nil {
			return nil, err
		}
		return &AggregateResponse{Scalar: &model.ScalarResult{Op: req.Op, Measure: req.Measure, Value: &v}}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported op %q", ErrInvalidRequest, req.Op)
	}
}

func errorKind(err error) string {
	var unknown *engine.UnknownFieldError
	if errors.As(err, &unknown) {
		return "unknown_field"
	}
	return "invalid"
}
