package pipeline

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"engagement-dashboard/internal/model"
	"engagement-dashboard/pkg/utils"
)

// DefaultDateLayouts are tried in order when parsing the Date column.
var DefaultDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"02-01-2006",
	"2006/01/02",
}

// transformer applies the per-row cleanup that follows validation.
type transformer struct {
	layouts []string
	title   *cases.Caser
	hasDate bool
	report  *model.LoadReport
}

func newTransformer(opts Options, hasDate bool, report *model.LoadReport) *transformer {
	t := &transformer{layouts: opts.DateLayouts, hasDate: hasDate, report: report}
	if len(t.layouts) == 0 {
		t.layouts = DefaultDateLayouts
	}
	if opts.NormalizeCategories {
		title := cases.Title(language.Und)
		t.title = &title
	}
	return t
}

// applyTransformations normalizes categories and parses the Date cell.
func (t *transformer) applyTransformations(raw GenericRecord, rec *model.Record) {
	if t.title != nil {
		normalizeNames(t.title, rec)
	}
	if t.hasDate {
		rec.Date = t.parseDate(raw.Get(model.ColDate))
	}
}

// normalizeNames title-cases every categorical field.
func normalizeNames(title *cases.Caser, rec *model.Record) {
	for _, f := range []*string{
		&rec.Gender, &rec.Profession, &rec.Location,
		&rec.Platform, &rec.DeviceType, &rec.ConnectionType,
	} {
		*f = title.String(strings.ToLower(*f))
	}
}

// parseDate returns the "no date" marker for missing or unparseable cells.
func (t *transformer) parseDate(raw string) model.OptDate {
	if utils.IsMissing(raw) {
		return model.OptDate{}
	}
	for _, layout := range t.layouts {
		if d, err := time.Parse(layout, raw); err == nil {
			return model.OptDate{Time: d, Valid: true}
		}
	}
	t.report.InvalidDates++
	return model.OptDate{}
}

// assignSyntheticDates gives row i the date start + i days.
func assignSyntheticDates(rows []model.Record, start time.Time) {
	for i := range rows {
		rows[i].Date = model.OptDate{Time: start.AddDate(0, 0, i), Valid: true}
	}
}
