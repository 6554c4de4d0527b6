package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engagement-dashboard/internal/engine"
	"engagement-dashboard/internal/model"
)

func record(gender, profession, location, platform, connection string, age int, total, engagement float64) model.Record {
	r := model.Record{
		Gender:         gender,
		Profession:     profession,
		Age:            age,
		Location:       location,
		Platform:       platform,
		DeviceType:     "Mobile",
		ConnectionType: connection,
		TotalTimeSpent: total,
		Engagement:     engagement,
	}
	r.Derive()
	return r
}

func fixture() *model.Table {
	rows := []model.Record{
		record("Male", "Engineer", "India", "Instagram", "Wi-Fi", 25, 120, 4),
		record("Female", "Student", "USA", "TikTok", "Mobile Data", 19, 60, 8),
		record("Male", "Student", "USA", "Instagram", "Wi-Fi", 33, 180, 6),
		record("Female", "Engineer", "India", "YouTube", "Wi-Fi", 45, 40, 2),
	}
	rows[0].TimeSpentOnVideo = model.Some(30)
	rows[2].TimeSpentOnVideo = model.Some(50)
	rows[0].AddictionLevel = model.Some(3)
	rows[1].SelfControl = model.Some(5)
	return model.NewTable(rows, false)
}

func TestBuildKPIs(t *testing.T) {
	snap, err := Build(fixture(), BuildOptions{})
	require.NoError(t, err)

	assert.Equal(t, 4, snap.Rows)
	assert.Equal(t, KPI{Value: 5}, snap.KPIs.AvgEngagement)
	assert.Equal(t, KPI{Value: 400}, snap.KPIs.TotalTimeSpent)
	assert.Equal(t, KPI{Value: 40}, snap.KPIs.AvgTimeOnVideo)
}

func TestBuildCharts(t *testing.T) {
	snap, err := Build(fixture(), BuildOptions{})
	require.NoError(t, err)

	conn := snap.ConnectionByProfession
	assert.Equal(t, []string{"Engineer", "Student"}, conn.Rows)
	assert.Equal(t, []string{"Mobile Data", "Wi-Fi"}, conn.Columns)
	cell, ok := conn.Cell("Engineer", "Mobile Data")
	require.True(t, ok)
	assert.Equal(t, model.Some(0), cell, "missing combinations are zero-filled")
	cell, _ = conn.Cell("Engineer", "Wi-Fi")
	assert.Equal(t, model.Some(2), cell)

	require.Len(t, snap.AddictionByAge.Rows, 1)
	assert.Equal(t, []string{"25"}, snap.AddictionByAge.Rows[0].Keys)

	sc, _ := snap.SelfControlByGenderPlatform.Cell("Female", "TikTok")
	assert.Equal(t, model.Some(1), sc)
	sc, _ = snap.SelfControlByGenderPlatform.Cell("Female", "Instagram")
	assert.Equal(t, model.Some(0), sc)

	groups := make([]string, 0)
	for _, r := range snap.TimeByAgeGroup.Rows {
		groups = append(groups, r.Keys[0])
	}
	assert.Equal(t, []string{"19-30", "31-40", "41-50"}, groups)

	assert.Nil(t, snap.MonthlyTrend, "no dates, no monthly view")

	hours := make([]string, 0)
	for _, r := range snap.TimeByHour.Rows {
		hours = append(hours, r.Key)
	}
	assert.Equal(t, []string{"0", "1", "2", "3"}, hours)

	heat := snap.DemographicHeatmap
	v, ok := heat.Cell("Male", "India")
	require.True(t, ok)
	assert.Equal(t, model.Some(120), v)
	v, _ = heat.Cell("Male", "USA")
	assert.Equal(t, model.Some(180), v)
	v, ok = heat.Cell("Female", "USA")
	require.True(t, ok)
	assert.Equal(t, model.Some(60), v)
}

func TestHeatmapKeepsMissingCellsNull(t *testing.T) {
	table := model.NewTable([]model.Record{
		record("Male", "Engineer", "India", "Instagram", "Wi-Fi", 25, 120, 4),
		record("Female", "Student", "USA", "TikTok", "Wi-Fi", 19, 60, 8),
	}, false)

	snap, err := Build(table, BuildOptions{})
	require.NoError(t, err)

	v, ok := snap.DemographicHeatmap.Cell("Male", "USA")
	require.True(t, ok)
	assert.False(t, v.Valid)
}

func TestPlatformShare(t *testing.T) {
	snap, err := Build(fixture(), BuildOptions{SelectedPlatforms: []string{"TikTok", "YouTube"}})
	require.NoError(t, err)

	require.Len(t, snap.PlatformShare.All, 3)
	assert.Equal(t, PlatformSlice{Platform: "Instagram", Total: 300, Share: 0.75}, snap.PlatformShare.All[0])

	assert.Equal(t, []PlatformSlice{
		{Platform: "TikTok", Total: 60, Share: 0.6},
		{Platform: "YouTube", Total: 40, Share: 0.4},
	}, snap.PlatformShare.Selected)

	snap, err = Build(fixture(), BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, snap.PlatformShare.All, snap.PlatformShare.Selected)
}

func TestMonthlyTrend(t *testing.T) {
	table := fixture()
	for i := range table.Rows {
		table.Rows[i].Date = model.OptDate{Time: time.Date(2023, time.Month(1+i%2), 10, 0, 0, 0, 0, time.UTC), Valid: true}
		table.Rows[i].Derive()
	}
	table.HasDate = true

	snap, err := Build(table, BuildOptions{})
	require.NoError(t, err)
	require.NotNil(t, snap.MonthlyTrend)
	assert.Equal(t, []model.AggregateRow{
		{Keys: []string{"2023-01"}, Value: 300, Count: 2},
		{Keys: []string{"2023-02"}, Value: 100, Count: 2},
	}, snap.MonthlyTrend.Rows)
}

func TestChartsSkipUnclassifiedBins(t *testing.T) {
	table := fixture()
	table.Rows = append(table.Rows, record("Male", "Retired", "USA", "TikTok", "Wi-Fi", 104, 500, 1))
	table.Rows[0].Date = model.OptDate{Time: time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), Valid: true}
	table.Rows[0].Derive()
	table.HasDate = true

	snap, err := Build(table, BuildOptions{})
	require.NoError(t, err)

	for _, r := range snap.TimeByAgeGroup.Rows {
		assert.NotEqual(t, engine.Unclassified, r.Keys[0])
	}
	assert.Len(t, snap.TimeByAgeGroup.Rows, 3)
	assert.Equal(t, []model.AggregateRow{
		{Keys: []string{"2023-03"}, Value: 120, Count: 1},
	}, snap.MonthlyTrend.Rows)
	assert.Equal(t, KPI{Value: 900}, snap.KPIs.TotalTimeSpent, "KPIs still cover every row")
}

func TestBuildEmptyTable(t *testing.T) {
	snap, err := Build(model.NewTable(nil, false), BuildOptions{})
	require.NoError(t, err, "an empty selection never fails the render")

	assert.True(t, snap.KPIs.AvgEngagement.NoData)
	assert.True(t, snap.KPIs.AvgTimeOnVideo.NoData)
	assert.True(t, snap.KPIs.TotalTimeSpent.NoData)
	assert.Empty(t, snap.ConnectionByProfession.Rows)
	assert.Empty(t, snap.AddictionByAge.Rows)
	assert.Empty(t, snap.TimeByHour.Rows)
	assert.Empty(t, snap.PlatformShare.All)
	assert.Empty(t, snap.DemographicHeatmap.Cells)
}

func TestDensifyRejectsOtherShapes(t *testing.T) {
	m := Densify(&model.AggregateResult{GroupBy: []string{model.ColGender}}, model.Some(0))
	assert.Empty(t, m.Rows)
	assert.Empty(t, m.Columns)
}
