package model

import (
	"math"
	"strconv"
	"time"
)

// Source columns, named exactly as they appear in the CSV header
const (
	ColGender           = "Gender"
	ColProfession       = "Profession"
	ColAge              = "Age"
	ColLocation         = "Location"
	ColPlatform         = "Platform"
	ColDeviceType       = "DeviceType"
	ColConnectionType   = "ConnectionType"
	ColTotalTimeSpent   = "Total Time Spent"
	ColTimeSpentOnVideo = "Time Spent On Video"
	ColEngagement       = "Engagement"
	ColSelfControl      = "Self Control"
	ColAddictionLevel   = "Addiction Level"
	ColDate             = "Date"
)

// Derived columns
const (
	ColHour     = "Hour"
	ColMonth    = "Month"
	ColAgeGroup = "Age Group"
)

// SchemaColumns must all be present in the source header.
var SchemaColumns = []string{
	ColGender, ColProfession, ColAge, ColLocation, ColPlatform, ColDeviceType,
	ColConnectionType, ColTotalTimeSpent, ColTimeSpentOnVideo, ColEngagement,
	ColSelfControl, ColAddictionLevel,
}

// RequiredFields must be non-missing for a row to survive cleaning.
var RequiredFields = []string{
	ColGender, ColProfession, ColAge, ColLocation, ColPlatform, ColTotalTimeSpent, ColEngagement,
}

// OptFloat is a numeric cell that may be missing.
type OptFloat struct {
	Value float64
	Valid bool
}

// Some wraps a present value.
func Some(v float64) OptFloat {
	return OptFloat{Value: v, Valid: true}
}

// MarshalJSON renders a missing value as null.
func (o OptFloat) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, o.Value, 'g', -1, 64), nil
}

// OptDate is a calendar date that may be absent ("no date").
type OptDate struct {
	Time  time.Time
	Valid bool
}

// Month is a calendar year and month with the day dropped.
// The zero Month means "no month".
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf truncates a date to its month.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// IsZero reports whether the month is unset.
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// String renders the month as YYYY-MM.
func (m Month) String() string {
	if m.IsZero() {
		return ""
	}
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// MarshalJSON renders the month as "YYYY-MM", or null when unset.
func (m Month) MarshalJSON() ([]byte, error) {
	if m.IsZero() {
		return []byte("null"), nil
	}
	return strconv.AppendQuote(nil, m.String()), nil
}

// Record is one cleaned row of the usage dataset.
type Record struct {
	Gender           string   `json:"gender"`
	Profession       string   `json:"profession"`
	Age              int      `json:"age"`
	Location         string   `json:"location"`
	Platform         string   `json:"platform"`
	DeviceType       string   `json:"device_type"`
	ConnectionType   string   `json:"connection_type"`
	TotalTimeSpent   float64  `json:"total_time_spent"`    // minutes
	TimeSpentOnVideo OptFloat `json:"time_spent_on_video"` // seconds
	Engagement       float64  `json:"engagement"`
	SelfControl      OptFloat `json:"self_control"`
	AddictionLevel   OptFloat `json:"addiction_level"`

	// Derived at load time
	Date     OptDate  `json:"-"`
	Hour     int      `json:"hour"`
	Month    Month    `json:"month"`
	AgeGroup AgeGroup `json:"age_group"`
}

// HourOf buckets total minutes into whole hours. The result is never
// negative; durations too large for an int saturate at math.MaxInt.
func HourOf(totalMinutes float64) int {
	if totalMinutes < 0 {
		return 0
	}
	h := math.Floor(totalMinutes / 60)
	if h >= math.MaxInt {
		return math.MaxInt
	}
	return int(h)
}

// Derive recomputes Hour, Month and AgeGroup from the source fields.
func (r *Record) Derive() {
	r.Hour = HourOf(r.TotalTimeSpent)
	r.AgeGroup = AgeGroupOf(r.Age)
	if r.Date.Valid {
		r.Month = MonthOf(r.Date.Time)
	} else {
		r.Month = Month{}
	}
}

// Table is an ordered set of records. A Table handed out by the loader is
// never modified afterwards; filtering produces a new Table.
type Table struct {
	Rows    []Record `json:"rows"`
	HasDate bool     `json:"has_date"` // every Month value is meaningful only when true
}

// NewTable wraps rows without copying them.
func NewTable(rows []Record, hasDate bool) *Table {
	return &Table{Rows: rows, HasDate: hasDate}
}

// Len returns the number of rows; a nil table is empty.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}
