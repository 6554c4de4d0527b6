package engine

import (
	"sort"
	"strconv"

	"engagement-dashboard/internal/model"
)

// Unclassified is the group key of records that have no value for a
// dimension, such as Month without a date or Age Group outside every bin.
const Unclassified = "unclassified"

// Field is a named column of the cleaned table. A field with Key is a
// grouping dimension, a field with Value is a numeric measure; some are
// both.
type Field struct {
	Name string
	// Key returns the group value; ok is false when the row has none.
	Key func(r *model.Record) (string, bool)
	// Value returns the numeric value; ok is false when missing.
	Value func(r *model.Record) (float64, bool)
	// Less orders two key values.
	Less func(a, b string) bool
}

func text(get func(r *model.Record) string) func(*model.Record) (string, bool) {
	return func(r *model.Record) (string, bool) { return get(r), true }
}

func number(get func(r *model.Record) float64) func(*model.Record) (float64, bool) {
	return func(r *model.Record) (float64, bool) { return get(r), true }
}

func optional(get func(r *model.Record) model.OptFloat) func(*model.Record) (float64, bool) {
	return func(r *model.Record) (float64, bool) {
		o := get(r)
		return o.Value, o.Valid
	}
}

func lexical(a, b string) bool { return a < b }

func numeric(a, b string) bool {
	x, errA := strconv.Atoi(a)
	y, errB := strconv.Atoi(b)
	if errA != nil || errB != nil {
		return a < b
	}
	return x < y
}

func byAgeGroup(a, b string) bool {
	x, _ := model.ParseAgeGroup(a)
	y, _ := model.ParseAgeGroup(b)
	return x < y
}

// "YYYY-MM" sorts chronologically as text
var chronological = lexical

var fields = map[string]*Field{
	model.ColGender:         {Name: model.ColGender, Key: text(func(r *model.Record) string { return r.Gender }), Less: lexical},
	model.ColProfession:     {Name: model.ColProfession, Key: text(func(r *model.Record) string { return r.Profession }), Less: lexical},
	model.ColLocation:       {Name: model.ColLocation, Key: text(func(r *model.Record) string { return r.Location }), Less: lexical},
	model.ColPlatform:       {Name: model.ColPlatform, Key: text(func(r *model.Record) string { return r.Platform }), Less: lexical},
	model.ColDeviceType:     {Name: model.ColDeviceType, Key: text(func(r *model.Record) string { return r.DeviceType }), Less: lexical},
	model.ColConnectionType: {Name: model.ColConnectionType, Key: text(func(r *model.Record) string { return r.ConnectionType }), Less: lexical},
	model.ColAge: {
		Name:  model.ColAge,
		Key:   text(func(r *model.Record) string { return strconv.Itoa(r.Age) }),
		Value: number(func(r *model.Record) float64 { return float64(r.Age) }),
		Less:  numeric,
	},
	model.ColHour: {
		Name:  model.ColHour,
		Key:   text(func(r *model.Record) string { return strconv.Itoa(r.Hour) }),
		Value: number(func(r *model.Record) float64 { return float64(r.Hour) }),
		Less:  numeric,
	},
	model.ColMonth: {
		Name: model.ColMonth,
		Key: func(r *model.Record) (string, bool) {
			return r.Month.String(), !r.Month.IsZero()
		},
		Less: chronological,
	},
	model.ColAgeGroup: {
		Name: model.ColAgeGroup,
		Key: func(r *model.Record) (string, bool) {
			return r.AgeGroup.String(), r.AgeGroup != model.AgeGroupUnclassified
		},
		Less: byAgeGroup,
	},
	model.ColTotalTimeSpent:   {Name: model.ColTotalTimeSpent, Value: number(func(r *model.Record) float64 { return r.TotalTimeSpent })},
	model.ColEngagement:       {Name: model.ColEngagement, Value: number(func(r *model.Record) float64 { return r.Engagement })},
	model.ColTimeSpentOnVideo: {Name: model.ColTimeSpentOnVideo, Value: optional(func(r *model.Record) model.OptFloat { return r.TimeSpentOnVideo })},
	model.ColSelfControl:      {Name: model.ColSelfControl, Value: optional(func(r *model.Record) model.OptFloat { return r.SelfControl })},
	model.ColAddictionLevel:   {Name: model.ColAddictionLevel, Value: optional(func(r *model.Record) model.OptFloat { return r.AddictionLevel })},
}

// Dimension looks up a grouping field by name.
func Dimension(name string) (*Field, error) {
	f, ok := fields[name]
	if !ok || f.Key == nil {
		return nil, &UnknownFieldError{Field: name, Role: "dimension"}
	}
	return f, nil
}

// Measure looks up a numeric field by name.
func Measure(name string) (*Field, error) {
	f, ok := fields[name]
	if !ok || f.Value == nil {
		return nil, &UnknownFieldError{Field: name, Role: "measure"}
	}
	return f, nil
}

// Dimensions lists the grouping field names, sorted.
func Dimensions() []string {
	return names(func(f *Field) bool { return f.Key != nil })
}

// Measures lists the numeric field names, sorted.
func Measures() []string {
	return names(func(f *Field) bool { return f.Value != nil })
}

func names(keep func(*Field) bool) []string {
	var out []string
	for name, f := range fields {
		if keep(f) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func dimensions(names []string) ([]*Field, error) {
	out := make([]*Field, len(names))
	for i, n := range names {
		f, err := Dimension(n)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}
