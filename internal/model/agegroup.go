package model

import "strconv"

// AgeGroup is one of the fixed, ordered age bins.
type AgeGroup int

const (
	AgeGroupUnclassified AgeGroup = iota
	AgeGroupUnder18
	AgeGroup19To30
	AgeGroup31To40
	AgeGroup41To50
	AgeGroup51To60
	AgeGroup60Plus
)

// right-open [lo, hi) bins
var ageBins = []struct {
	lo, hi int
	group  AgeGroup
	label  string
}{
	{0, 18, AgeGroupUnder18, "0-18"},
	{18, 30, AgeGroup19To30, "19-30"},
	{30, 40, AgeGroup31To40, "31-40"},
	{40, 50, AgeGroup41To50, "41-50"},
	{50, 60, AgeGroup51To60, "51-60"},
	{60, 100, AgeGroup60Plus, "60+"},
}

// AgeGroupOf places an age into its bin. Ages outside [0,100) are unclassified.
func AgeGroupOf(age int) AgeGroup {
	for _, b := range ageBins {
		if age >= b.lo && age < b.hi {
			return b.group
		}
	}
	return AgeGroupUnclassified
}

// String returns the bin label, or "" when unclassified.
func (g AgeGroup) String() string {
	for _, b := range ageBins {
		if b.group == g {
			return b.label
		}
	}
	return ""
}

// ParseAgeGroup maps a label back to its group.
func ParseAgeGroup(label string) (AgeGroup, bool) {
	for _, b := range ageBins {
		if b.label == label {
			return b.group, true
		}
	}
	return AgeGroupUnclassified, false
}

func (g AgeGroup) MarshalJSON() ([]byte, error) {
	if g == AgeGroupUnclassified {
		return []byte("null"), nil
	}
	return strconv.AppendQuote(nil, g.String()), nil
}
