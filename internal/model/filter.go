package model

import (
	"fmt"
	"sort"
)

// FilterDimensions are the categorical columns a FilterSpec constrains.
var FilterDimensions = []string{ColGender, ColProfession, ColLocation, ColPlatform, ColDeviceType}

// FilterSpec is an immutable snapshot of the user's filter selections.
// Every categorical dimension has an allowed set (OR within the set);
// dimensions and the inclusive age range are AND-combined.
type FilterSpec struct {
	allowed map[string]map[string]struct{}
	ageMin  int
	ageMax  int
}

// Selection is the raw widget state a FilterSpec is built from.
// A nil slice here is an empty allowed set; resolving "select all" into
// concrete values is the caller's job (see AllowAll and session.Resolve).
type Selection struct {
	Genders     []string
	Professions []string
	Locations   []string
	Platforms   []string
	DeviceTypes []string
	AgeMin      int
	AgeMax      int
}

// NewFilterSpec copies a selection into an immutable FilterSpec.
func NewFilterSpec(sel Selection) (FilterSpec, error) {
	if sel.AgeMin > sel.AgeMax {
		return FilterSpec{}, fmt.Errorf("invalid age range: min %d > max %d", sel.AgeMin, sel.AgeMax)
	}

	spec := FilterSpec{
		allowed: make(map[string]map[string]struct{}, len(FilterDimensions)),
		ageMin:  sel.AgeMin,
		ageMax:  sel.AgeMax,
	}
	spec.allowed[ColGender] = toSet(sel.Genders)
	spec.allowed[ColProfession] = toSet(sel.Professions)
	spec.allowed[ColLocation] = toSet(sel.Locations)
	spec.allowed[ColPlatform] = toSet(sel.Platforms)
	spec.allowed[ColDeviceType] = toSet(sel.DeviceTypes)
	return spec, nil
}

// AllowAll builds the filter that admits every row of the table: every
// observed category and the table's full age range.
func AllowAll(t *Table) FilterSpec {
	sel := Selection{}
	if t.Len() > 0 {
		sel.AgeMin, sel.AgeMax = t.Rows[0].Age, t.Rows[0].Age
	}
	seen := make(map[string]map[string]bool, len(FilterDimensions))
	for _, dim := range FilterDimensions {
		seen[dim] = make(map[string]bool)
	}
	add := func(dim, v string, dst *[]string) {
		if !seen[dim][v] {
			seen[dim][v] = true
			*dst = append(*dst, v)
		}
	}
	if t != nil {
		for _, r := range t.Rows {
			add(ColGender, r.Gender, &sel.Genders)
			add(ColProfession, r.Profession, &sel.Professions)
			add(ColLocation, r.Location, &sel.Locations)
			add(ColPlatform, r.Platform, &sel.Platforms)
			add(ColDeviceType, r.DeviceType, &sel.DeviceTypes)
			if r.Age < sel.AgeMin {
				sel.AgeMin = r.Age
			}
			if r.Age > sel.AgeMax {
				sel.AgeMax = r.Age
			}
		}
	}
	spec, _ := NewFilterSpec(sel) // min <= max by construction
	return spec
}

// Allows reports whether value is in the allowed set of a dimension.
// Dimensions the filter does not cover are never constrained.
func (f FilterSpec) Allows(dimension, value string) bool {
	set, ok := f.allowed[dimension]
	if !ok {
		return true
	}
	_, in := set[value]
	return in
}

// AllowsAge reports whether age lies within the inclusive range.
func (f FilterSpec) AllowsAge(age int) bool {
	return age >= f.ageMin && age <= f.ageMax
}

// AgeRange returns the inclusive age bounds.
func (f FilterSpec) AgeRange() (int, int) {
	return f.ageMin, f.ageMax
}

// Allowed returns a sorted copy of a dimension's allowed values.
func (f FilterSpec) Allowed(dimension string) []string {
	set := f.allowed[dimension]
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Empty reports whether some dimension allows nothing, in which case no
// row can pass.
func (f FilterSpec) Empty() bool {
	for _, dim := range FilterDimensions {
		if len(f.allowed[dim]) == 0 {
			return true
		}
	}
	return false
}

// Matches applies every predicate of the filter to one record.
func (f FilterSpec) Matches(r *Record) bool {
	return f.AllowsAge(r.Age) &&
		f.Allows(ColGender, r.Gender) &&
		f.Allows(ColProfession, r.Profession) &&
		f.Allows(ColLocation, r.Location) &&
		f.Allows(ColPlatform, r.Platform) &&
		f.Allows(ColDeviceType, r.DeviceType)
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
