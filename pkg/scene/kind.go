package scene

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Kind is the closed enumeration of digit widget readouts.
type Kind int

// Digit widget kinds, in the order the device firmware lists them.
const (
	KindTime Kind = iota
	KindDate
	KindWeek
	KindDay
	KindSecond
	KindHour
	KindMin
	KindYear
	KindHeartRate
	KindCalorie
	KindDistance
	KindStep
	KindBattery
	KindWeather
	KindAPM

	numKinds
)

var kindNames = [numKinds]string{
	KindTime:      "time",
	KindDate:      "date",
	KindWeek:      "week",
	KindDay:       "day",
	KindSecond:    "second",
	KindHour:      "hour",
	KindMin:       "min",
	KindYear:      "year",
	KindHeartRate: "heartrate",
	KindCalorie:   "calorie",
	KindDistance:  "distance",
	KindStep:      "step",
	KindBattery:   "battery",
	KindWeather:   "weather",
	KindAPM:       "apm",
}

// String returns the scene-file name of the kind (e.g. "heartrate").
func (k Kind) String() string {
	if !k.Valid() {
		return "unknown"
	}
	return kindNames[k]
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k >= 0 && k < numKinds
}

// TimeDerived reports whether the kind's value is computed from the render
// time rather than supplied by the caller.
func (k Kind) TimeDerived() bool {
	switch k {
	case KindTime, KindHour, KindMin, KindSecond, KindAPM:
		return true
	}
	return false
}

// Kinds returns every declared kind in enumeration order.
func Kinds() []Kind {
	out := make([]Kind, numKinds)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// ParseKind maps a scene-file name to its Kind. Matching is case-insensitive.
func ParseKind(s string) (Kind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range kindNames {
		if name == s {
			return Kind(i), true
		}
	}
	return 0, false
}

// SuggestKind returns the declared kind name closest to s, or "" when
// nothing is within two edits.
func SuggestKind(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	best, bestDist := "", 3
	for _, name := range kindNames {
		if d := levenshtein.ComputeDistance(s, name); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

// Align is the horizontal alignment of a digit widget's content in its box.
type Align int

// Alignments. The zero value is left alignment, the editor's default.
const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// String returns the scene-file name of the alignment.
func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "unknown"
	}
}

// ParseAlign maps a scene-file alignment name to an Align.
// The empty string means left.
func ParseAlign(s string) (Align, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "left":
		return AlignLeft, true
	case "center", "centre":
		return AlignCenter, true
	case "right":
		return AlignRight, true
	}
	return 0, false
}
