package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engagement-dashboard/internal/engine"
	"engagement-dashboard/internal/model"
	"engagement-dashboard/internal/pipeline"
)

const csvData = `Gender,Profession,Age,Location,Platform,DeviceType,ConnectionType,Total Time Spent,Time Spent On Video,Engagement,Self Control,Addiction Level
Male,Student,20,USA,TikTok,Mobile,Wi-Fi,120,40,5,3,4
Female,Student,22,USA,TikTok,Mobile,Wi-Fi,30,,7,6,
Male,Engineer,41,India,Instagram,Computer,Mobile Data,200,10,3,2,5
`

func openSession(t *testing.T) *Session {
	t.Helper()
	path := filepath.Join(t.TempDir(), "usage.csv")
	require.NoError(t, os.WriteFile(path, []byte(csvData), 0o644))

	s, err := Open(context.Background(), path, pipeline.Options{})
	require.NoError(t, err)
	return s
}

func intp(v int) *int { return &v }

func TestOpen(t *testing.T) {
	s := openSession(t)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 3, s.Table().Len())
	assert.Equal(t, 3, s.Report().RowsKept)

	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), pipeline.Options{})
	var loadErr *pipeline.LoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestOptions(t *testing.T) {
	o, err := openSession(t).Options()
	require.NoError(t, err)

	assert.Equal(t, []string{"Female", "Male"}, o.Genders)
	assert.Equal(t, []string{"Instagram", "TikTok"}, o.Platforms)
	assert.Equal(t, 20, o.AgeMin)
	assert.Equal(t, 41, o.AgeMax)
	assert.Contains(t, o.Measures, model.ColEngagement)
	assert.Contains(t, o.Dimensions, model.ColAgeGroup)
}

func TestResolveDefaults(t *testing.T) {
	s := openSession(t)

	spec, err := s.Resolve(model.FilterRequest{})
	require.NoError(t, err)
	lo, hi := spec.AgeRange()
	assert.Equal(t, 20, lo)
	assert.Equal(t, 41, hi)
	assert.Equal(t, []string{"India", "USA"}, spec.Allowed(model.ColLocation))

	spec, err = s.Resolve(model.FilterRequest{Genders: []string{}})
	require.NoError(t, err)
	assert.True(t, spec.Empty(), "an explicit empty list selects nothing")

	_, err = s.Resolve(model.FilterRequest{AgeMin: intp(50), AgeMax: intp(10)})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestRender(t *testing.T) {
	s := openSession(t)

	snap, err := s.Render(context.Background(), model.RenderRequest{
		Filter: model.FilterRequest{Genders: []string{"Male"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Rows)
	assert.Equal(t, 4.0, snap.KPIs.AvgEngagement.Value)
	assert.Equal(t, 320.0, snap.KPIs.TotalTimeSpent.Value)

	empty, err := s.Render(context.Background(), model.RenderRequest{
		Filter: model.FilterRequest{Platforms: []string{}},
	})
	require.NoError(t, err)
	assert.True(t, empty.KPIs.AvgEngagement.NoData)
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := openSession(t).Render(ctx, model.RenderRequest{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAggregate(t *testing.T) {
	s := openSession(t)
	ctx := context.Background()

	resp, err := s.Aggregate(ctx, model.AggregateRequest{Op: model.OpMean, GroupBy: []string{model.ColGender}, Measure: model.ColEngagement})
	require.NoError(t, err)
	row, ok := resp.Result.Lookup("Female")
	require.True(t, ok)
	assert.Equal(t, 7.0, row.Value)

	resp, err = s.Aggregate(ctx, model.AggregateRequest{Op: model.OpCount, GroupBy: []string{model.ColProfession, model.ColPlatform}})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Result.Len())

	resp, err = s.Aggregate(ctx, model.AggregateRequest{Op: model.OpDistribution, GroupBy: []string{model.ColHour}, Measure: model.ColTotalTimeSpent})
	require.NoError(t, err)
	assert.Len(t, resp.Distribution.Rows, 3)

	resp, err = s.Aggregate(ctx, model.AggregateRequest{Op: model.OpScalarSum, Measure: model.ColTotalTimeSpent})
	require.NoError(t, err)
	require.NotNil(t, resp.Scalar.Value)
	assert.Equal(t, 350.0, *resp.Scalar.Value)
}

func TestAggregateTwoRowScenario(t *testing.T) {
	src := `Gender,Profession,Age,Location,Platform,DeviceType,ConnectionType,Total Time Spent,Time Spent On Video,Engagement,Self Control,Addiction Level
F,Student,22,X,A,Mobile,Wi-Fi,30,,5,,
M,Student,45,Y,B,Mobile,Wi-Fi,90,,7,,
`
	table, report, err := pipeline.LoadReader(context.Background(), "two-rows.csv", strings.NewReader(src), pipeline.Options{})
	require.NoError(t, err)
	s := New(table, report)
	ctx := context.Background()

	resp, err := s.Aggregate(ctx, model.AggregateRequest{Op: model.OpScalarMean, Measure: model.ColEngagement})
	require.NoError(t, err)
	assert.Equal(t, 6.0, *resp.Scalar.Value)

	onlyF := model.FilterRequest{Genders: []string{"F"}}
	filtered, err := s.Filter(onlyF)
	require.NoError(t, err)
	require.Equal(t, 1, filtered.Len())
	assert.Equal(t, "X", filtered.Rows[0].Location)
	assert.Equal(t, 22, filtered.Rows[0].Age)

	resp, err = s.Aggregate(ctx, model.AggregateRequest{Filter: onlyF, Op: model.OpScalarMean, Measure: model.ColEngagement})
	require.NoError(t, err)
	assert.Equal(t, 5.0, *resp.Scalar.Value)
}

func TestAggregateEmptyScalarMean(t *testing.T) {
	resp, err := openSession(t).Aggregate(context.Background(), model.AggregateRequest{
		Filter:  model.FilterRequest{Genders: []string{"Other"}},
		Op:      model.OpScalarMean,
		Measure: model.ColEngagement,
	})
	require.NoError(t, err)
	assert.True(t, resp.Scalar.NoData)
	assert.Nil(t, resp.Scalar.Value)
}

func TestAggregateErrors(t *testing.T) {
	s := openSession(t)
	ctx := context.Background()

	_, err := s.Aggregate(ctx, model.AggregateRequest{Op: model.OpSum, GroupBy: []string{"Shoe Size"}, Measure: model.ColEngagement})
	var unknown *engine.UnknownFieldError
	assert.True(t, errors.As(err, &unknown))

	_, err = s.Aggregate(ctx, model.AggregateRequest{Op: model.OpSum, Measure: model.ColEngagement})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.True(t, strings.Contains(err.Error(), "exactly one"))

	_, err = s.Aggregate(ctx, model.AggregateRequest{Op: "median"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
