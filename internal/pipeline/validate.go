package pipeline

import (
	"engagement-dashboard/internal/model"
	"engagement-dashboard/pkg/utils"
)

// ValidationRules decide which rows survive cleaning.
type ValidationRules struct {
	RequiredFields []string
	// MinValues marks values below the bound as missing.
	MinValues map[string]float64
}

// DefaultRules requires the seven core fields and rejects negative
// ages, durations and engagement counts.
func DefaultRules() ValidationRules {
	return ValidationRules{
		RequiredFields: model.RequiredFields,
		MinValues: map[string]float64{
			model.ColAge:              0,
			model.ColTotalTimeSpent:   0,
			model.ColTimeSpentOnVideo: 0,
			model.ColEngagement:       0,
		},
	}
}

// checkSchema fails when an expected column is absent from the header.
func checkSchema(source string, header []string) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	var missing []string
	for _, col := range model.SchemaColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Source: source, Missing: missing}
	}
	return nil
}

// validator coerces raw cells into typed fields, applying the rules.
type validator struct {
	rules    ValidationRules
	required map[string]bool
	report   *model.LoadReport
}

func newValidator(rules ValidationRules, report *model.LoadReport) *validator {
	required := make(map[string]bool, len(rules.RequiredFields))
	for _, f := range rules.RequiredFields {
		required[f] = true
	}
	return &validator{rules: rules, required: required, report: report}
}

// validateRecord builds a typed record. ok is false when a required field
// is missing or fails coercion.
func (v *validator) validateRecord(rec GenericRecord) (model.Record, bool) {
	out := model.Record{}
	ok := true

	str := func(col string, dst *string) {
		s := rec.Get(col)
		if utils.IsMissing(s) {
			s = ""
			if v.required[col] {
				ok = false
			}
		}
		*dst = s
	}
	str(model.ColGender, &out.Gender)
	str(model.ColProfession, &out.Profession)
	str(model.ColLocation, &out.Location)
	str(model.ColPlatform, &out.Platform)
	str(model.ColDeviceType, &out.DeviceType)
	str(model.ColConnectionType, &out.ConnectionType)

	if age, present := v.intField(rec, model.ColAge); present {
		out.Age = age
	} else if v.required[model.ColAge] {
		ok = false
	}

	num := func(col string, dst *model.OptFloat) {
		f, present := v.floatField(rec, col)
		if present {
			*dst = model.Some(f)
		} else if v.required[col] {
			ok = false
		}
	}
	var total, engagement model.OptFloat
	num(model.ColTotalTimeSpent, &total)
	num(model.ColEngagement, &engagement)
	num(model.ColTimeSpentOnVideo, &out.TimeSpentOnVideo)
	num(model.ColSelfControl, &out.SelfControl)
	num(model.ColAddictionLevel, &out.AddictionLevel)
	out.TotalTimeSpent = total.Value
	out.Engagement = engagement.Value

	return out, ok
}

// floatField reads a numeric cell. present is false for missing markers,
// unparseable text and values below the column minimum.
func (v *validator) floatField(rec GenericRecord, col string) (float64, bool) {
	raw := rec.Get(col)
	if utils.IsMissing(raw) {
		return 0, false
	}
	f, ok := utils.ParseFloat(raw)
	if !ok || !v.inRange(col, f) {
		v.report.NoteFieldError(col)
		return 0, false
	}
	return f, true
}

func (v *validator) intField(rec GenericRecord, col string) (int, bool) {
	raw := rec.Get(col)
	if utils.IsMissing(raw) {
		return 0, false
	}
	i, ok := utils.ParseInt(raw)
	if !ok || !v.inRange(col, float64(i)) {
		v.report.NoteFieldError(col)
		return 0, false
	}
	return i, true
}

func (v *validator) inRange(col string, f float64) bool {
	bound, ok := v.rules.MinValues[col]
	return !ok || f >= bound
}
