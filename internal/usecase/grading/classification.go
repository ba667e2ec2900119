// Package grading turns a course tree into weighted grades, degree classifications
// and target-tracking signals. Everything here is pure: no I/O, no mutation of the
// input tree and no rounding.
package grading

import "sort"

// Classification is a discrete grade band.
type Classification string

const (
	First        Classification = "first"
	UpperSecond  Classification = "upper_second"
	LowerSecond  Classification = "lower_second"
	Third        Classification = "third"
	Fail         Classification = "fail"
	NotAvailable Classification = "not_available"
)

// Label returns the conventional short label of the band.
func (c Classification) Label() string {
	switch c {
	case First:
		return "First"
	case UpperSecond:
		return "2:1"
	case LowerSecond:
		return "2:2"
	case Third:
		return "Third"
	case Fail:
		return "Fail"
	default:
		return "N/A"
	}
}

// Band maps an inclusive lower bound to a classification.
type Band struct {
	Classification Classification
	Min            float64
}

// Scheme is an ordered set of bands. Percentages under every band resolve to Fallback.
type Scheme struct {
	Name     string
	Bands    []Band
	Fallback Classification
}

// UKHonours is the undergraduate honours convention used by default.
var UKHonours = NewScheme("uk_honours", Fail,
	Band{Classification: First, Min: 70},
	Band{Classification: UpperSecond, Min: 60},
	Band{Classification: LowerSecond, Min: 50},
	Band{Classification: Third, Min: 40},
)

// NewScheme builds a scheme with bands sorted by descending lower bound.
func NewScheme(name string, fallback Classification, bands ...Band) Scheme {
	sorted := append([]Band(nil), bands...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Min > sorted[j].Min })
	return Scheme{Name: name, Bands: sorted, Fallback: fallback}
}

// Classify resolves a percentage against the scheme. A nil percentage is NotAvailable.
func (s Scheme) Classify(percentage *float64) Classification {
	if percentage == nil {
		return NotAvailable
	}
	for _, b := range s.Bands {
		if *percentage >= b.Min {
			return b.Classification
		}
	}
	return s.Fallback
}

// Classify resolves a percentage with the UK honours scheme.
func Classify(percentage *float64) Classification {
	return UKHonours.Classify(percentage)
}

// Color is a hex display colour.
type Color string

var palette = map[Classification]Color{
	First:       "#16A34A",
	UpperSecond: "#2563EB",
	LowerSecond: "#D97706",
	Third:       "#EA580C",
	Fail:        "#DC2626",
}

const (
	neutralLight Color = "#9CA3AF"
	neutralDark  Color = "#4B5563"
)

// ColorFor returns the display colour of a band. NotAvailable (and any band missing from
// the palette) resolves to the neutral tone of the active theme.
func ColorFor(c Classification, darkMode bool) Color {
	if color, ok := palette[c]; ok {
		return color
	}
	if darkMode {
		return neutralDark
	}
	return neutralLight
}
