// Package dashboard builds the fixed set of dashboard views from a
// filtered table. Views are plain data; drawing them is left to clients.
package dashboard

import (
	"errors"

	"engagement-dashboard/internal/engine"
	"engagement-dashboard/internal/model"
)

// KPI is a headline number. NoData marks an undefined value, such as the
// mean of an empty selection.
type KPI struct {
	Value  float64 `json:"value"`
	NoData bool    `json:"no_data"`
}

// KPIs are the three headline figures.
type KPIs struct {
	AvgEngagement  KPI `json:"avg_engagement"`
	TotalTimeSpent KPI `json:"total_time_spent"`
	AvgTimeOnVideo KPI `json:"avg_time_on_video"`
}

// PlatformSlice is one platform's share of total time spent.
type PlatformSlice struct {
	Platform string  `json:"platform"`
	Total    float64 `json:"total"`
	Share    float64 `json:"share"` // fraction of the slices shown
}

// PlatformShare splits time spent across platforms. Selected holds the
// pie over the requested platforms, or over all of them when none were
// requested.
type PlatformShare struct {
	All      []PlatformSlice `json:"all"`
	Selected []PlatformSlice `json:"selected"`
}

// Snapshot is one full render of the dashboard.
type Snapshot struct {
	Rows                        int                       `json:"rows"`
	KPIs                        KPIs                      `json:"kpis"`
	ConnectionByProfession      Matrix                    `json:"connection_by_profession"`
	AddictionByAge              *model.AggregateResult    `json:"addiction_by_age"`
	SelfControlByGenderPlatform Matrix                    `json:"self_control_by_gender_platform"`
	TimeByAgeGroup              *model.AggregateResult    `json:"time_by_age_group"`
	MonthlyTrend                *model.AggregateResult    `json:"monthly_trend,omitempty"`
	TimeByHour                  *model.DistributionResult `json:"time_by_hour"`
	PlatformShare               PlatformShare             `json:"platform_share"`
	DemographicHeatmap          Matrix                    `json:"demographic_heatmap"`
}

// BuildOptions tune a render.
type BuildOptions struct {
	SelectedPlatforms []string
}

// Build renders every view over an already filtered table. Field names
// are fixed, so the only error source is a programming mistake.
func Build(t *model.Table, opts BuildOptions) (*Snapshot, error) {
	s := &Snapshot{Rows: t.Len()}
	var err error

	if s.KPIs, err = buildKPIs(t); err != nil {
		return nil, err
	}

	counts, err := engine.CountBy(t, model.ColProfession, model.ColConnectionType)
	if err != nil {
		return nil, err
	}
	s.ConnectionByProfession = Densify(counts, model.Some(0))

	if s.AddictionByAge, err = engine.MeanBy(t, model.ColAge, model.ColAddictionLevel); err != nil {
		return nil, err
	}

	selfControl, err := engine.CountValuesBy(t, model.ColSelfControl, model.ColGender, model.ColPlatform)
	if err != nil {
		return nil, err
	}
	s.SelfControlByGenderPlatform = Densify(selfControl, model.Some(0))

	byAgeGroup, err := engine.MeanBy(t, model.ColAgeGroup, model.ColTotalTimeSpent)
	if err != nil {
		return nil, err
	}
	s.TimeByAgeGroup = classified(byAgeGroup)

	if t != nil && t.HasDate {
		monthly, err := engine.SumBy(t, model.ColMonth, model.ColTotalTimeSpent)
		if err != nil {
			return nil, err
		}
		s.MonthlyTrend = classified(monthly)
	}

	if s.TimeByHour, err = engine.DistributionBy(t, model.ColHour, model.ColTotalTimeSpent); err != nil {
		return nil, err
	}

	if s.PlatformShare, err = buildPlatformShare(t, opts.SelectedPlatforms); err != nil {
		return nil, err
	}

	heat, err := engine.MeanByKeys(t, model.ColTotalTimeSpent, model.ColGender, model.ColLocation)
	if err != nil {
		return nil, err
	}
	s.DemographicHeatmap = Densify(heat, model.OptFloat{})

	return s, nil
}

// classified drops the Unclassified group from a single-key result. The
// age group and monthly charts only plot real bins and months.
func classified(res *model.AggregateResult) *model.AggregateResult {
	rows := make([]model.AggregateRow, 0, len(res.Rows))
	for _, r := range res.Rows {
		if r.Keys[0] != engine.Unclassified {
			rows = append(rows, r)
		}
	}
	out := *res
	out.Rows = rows
	return &out
}

func buildKPIs(t *model.Table) (KPIs, error) {
	var k KPIs
	var err error
	if k.AvgEngagement, err = meanKPI(t, model.ColEngagement); err != nil {
		return k, err
	}
	if k.AvgTimeOnVideo, err = meanKPI(t, model.ColTimeSpentOnVideo); err != nil {
		return k, err
	}
	total, err := engine.ScalarSum(t, model.ColTotalTimeSpent)
	if err != nil {
		return k, err
	}
	k.TotalTimeSpent = KPI{Value: total, NoData: t.Len() == 0}
	return k, nil
}

// meanKPI turns an empty mean into NoData rather than a number.
func meanKPI(t *model.Table, field string) (KPI, error) {
	v, err := engine.ScalarMean(t, field)
	var empty *engine.EmptyAggregationError
	if errors.As(err, &empty) {
		return KPI{NoData: true}, nil
	}
	if err != nil {
		return KPI{}, err
	}
	return KPI{Value: v}, nil
}

func buildPlatformShare(t *model.Table, selected []string) (PlatformShare, error) {
	sums, err := engine.SumBy(t, model.ColPlatform, model.ColTotalTimeSpent)
	if err != nil {
		return PlatformShare{}, err
	}

	all := make([]PlatformSlice, 0, len(sums.Rows))
	for _, r := range sums.Rows {
		all = append(all, PlatformSlice{Platform: r.Keys[0], Total: r.Value})
	}

	pick := all
	if len(selected) > 0 {
		want := make(map[string]bool, len(selected))
		for _, p := range selected {
			want[p] = true
		}
		pick = make([]PlatformSlice, 0, len(selected))
		for _, s := range all {
			if want[s.Platform] {
				pick = append(pick, s)
			}
		}
	}

	return PlatformShare{All: withShares(all), Selected: withShares(pick)}, nil
}

func withShares(slices []PlatformSlice) []PlatformSlice {
	out := make([]PlatformSlice, len(slices))
	copy(out, slices)
	var total float64
	for _, s := range out {
		total += s.Total
	}
	if total == 0 {
		return out
	}
	for i := range out {
		out[i].Share = out[i].Total / total
	}
	return out
}
