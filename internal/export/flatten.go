package export

import (
	"engagement-dashboard/internal/dashboard"
	"engagement-dashboard/internal/model"
)

// View names used in flattened exports
const (
	ViewKPI                  = "kpi"
	ViewConnectionProfession = "connection_by_profession"
	ViewAddictionByAge       = "addiction_by_age"
	ViewSelfControl          = "self_control_by_gender_platform"
	ViewTimeByAgeGroup       = "time_by_age_group"
	ViewMonthlyTrend         = "monthly_trend"
	ViewTimeByHour           = "time_by_hour"
	ViewPlatformShare        = "platform_share"
	ViewPlatformSelected     = "platform_share_selected"
	ViewDemographicHeatmap   = "demographic_heatmap"
)

// Row is one value of one view.
type Row struct {
	View  string
	Keys  []string
	Value model.OptFloat
	Count int
}

// Flatten lays every view of a snapshot out as rows. Undefined KPIs and
// null heatmap cells keep a missing value.
func Flatten(snap *dashboard.Snapshot) []Row {
	if snap == nil {
		return nil
	}
	var rows []Row

	kpi := func(name string, k dashboard.KPI) {
		v := model.Some(k.Value)
		if k.NoData {
			v = model.OptFloat{}
		}
		rows = append(rows, Row{View: ViewKPI, Keys: []string{name}, Value: v})
	}
	kpi("avg_engagement", snap.KPIs.AvgEngagement)
	kpi("total_time_spent", snap.KPIs.TotalTimeSpent)
	kpi("avg_time_on_video", snap.KPIs.AvgTimeOnVideo)

	matrix := func(view string, m dashboard.Matrix) {
		for i, r := range m.Rows {
			for j, c := range m.Columns {
				rows = append(rows, Row{View: view, Keys: []string{r, c}, Value: m.Cells[i][j]})
			}
		}
	}
	result := func(view string, res *model.AggregateResult) {
		if res == nil {
			return
		}
		for _, r := range res.Rows {
			rows = append(rows, Row{View: view, Keys: r.Keys, Value: model.Some(r.Value), Count: r.Count})
		}
	}

	matrix(ViewConnectionProfession, snap.ConnectionByProfession)
	result(ViewAddictionByAge, snap.AddictionByAge)
	matrix(ViewSelfControl, snap.SelfControlByGenderPlatform)
	result(ViewTimeByAgeGroup, snap.TimeByAgeGroup)
	result(ViewMonthlyTrend, snap.MonthlyTrend)

	if snap.TimeByHour != nil {
		for _, d := range snap.TimeByHour.Rows {
			for _, stat := range []struct {
				name  string
				value float64
			}{
				{"min", d.Min}, {"q1", d.Q1}, {"median", d.Median}, {"q3", d.Q3}, {"max", d.Max},
			} {
				rows = append(rows, Row{View: ViewTimeByHour, Keys: []string{d.Key, stat.name}, Value: model.Some(stat.value), Count: d.Count})
			}
		}
	}

	for _, s := range snap.PlatformShare.All {
		rows = append(rows, Row{View: ViewPlatformShare, Keys: []string{s.Platform}, Value: model.Some(s.Total)})
	}
	for _, s := range snap.PlatformShare.Selected {
		rows = append(rows, Row{View: ViewPlatformSelected, Keys: []string{s.Platform}, Value: model.Some(s.Share)})
	}

	matrix(ViewDemographicHeatmap, snap.DemographicHeatmap)
	return rows
}
