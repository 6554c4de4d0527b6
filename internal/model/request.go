package model

// FilterRequest is the dashboard filter widget state as sent by a client.
// A nil (absent) category list means "select all"; an empty list selects
// nothing. Nil age bounds default to the dataset's min and max age.
type FilterRequest struct {
	Genders     []string `json:"genders,omitempty"`
	Professions []string `json:"professions,omitempty"`
	Locations   []string `json:"locations,omitempty"`
	Platforms   []string `json:"platforms,omitempty"`
	DeviceTypes []string `json:"device_types,omitempty"`
	AgeMin      *int     `json:"age_min,omitempty" validate:"omitempty,gte=0"`
	AgeMax      *int     `json:"age_max,omitempty" validate:"omitempty,gte=0"`
}

// RenderRequest asks for the full set of dashboard views.
type RenderRequest struct {
	Filter FilterRequest `json:"filter"`
	// SelectedPlatforms narrows the platform share view; empty keeps all
	SelectedPlatforms []string `json:"selected_platforms,omitempty"`
}

// Ad-hoc aggregation operations accepted by the API
const (
	OpDistribution = "distribution"
	OpScalarMean   = "scalar_mean"
	OpScalarSum    = "scalar_sum"
)

// AggregateRequest asks for one aggregation over a filtered table
type AggregateRequest struct {
	Filter  FilterRequest `json:"filter"`
	Op      string        `json:"op" validate:"required,oneof=mean sum count count_values distribution scalar_mean scalar_sum"`
	GroupBy []string      `json:"group_by" validate:"max=3"`
	Measure string        `json:"measure"`
}

// ScalarResult is a single-value summary; NoData is set when the value is
// undefined (mean over zero rows).
type ScalarResult struct {
	Op      string   `json:"op"`
	Measure string   `json:"measure"`
	Value   *float64 `json:"value"`
	NoData  bool     `json:"no_data"`
}
