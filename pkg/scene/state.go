package scene

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wfstudio/wfrender/pkg/errors"
)

// Clock is a wall-clock time of day. Components are not normalised: a Clock
// with Hour 25 stays invalid until the caller clamps or rejects it.
type Clock struct {
	Hour   int
	Minute int
	Second int
}

// ClockOf returns the time of day of t in t's location.
func ClockOf(t time.Time) Clock {
	return Clock{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

// ParseClock parses "HH:MM" or "HH:MM:SS". Out-of-range components are an
// INVALID_TIME error, never wrapped into range.
func ParseClock(s string) (Clock, error) {
	c, err := SplitClock(s)
	if err != nil {
		return Clock{}, err
	}
	if err := c.Validate(); err != nil {
		return Clock{}, err
	}
	return c, nil
}

// SplitClock parses "HH:MM" or "HH:MM:SS" without range checks, for
// callers that clamp instead of rejecting.
func SplitClock(s string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return Clock{}, errors.New(errors.ErrCodeInvalidTime, "time must be HH:MM or HH:MM:SS, got %q", s)
	}
	var vals [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Clock{}, errors.Wrap(errors.ErrCodeInvalidTime, err, "time component %q", p)
		}
		vals[i] = n
	}
	return Clock{Hour: vals[0], Minute: vals[1], Second: vals[2]}, nil
}

// Validate reports out-of-range components as INVALID_TIME.
func (c Clock) Validate() error {
	return errors.ValidateClock(c.Hour, c.Minute, c.Second)
}

// Clamp returns c with each component limited to its valid range.
func (c Clock) Clamp() Clock {
	return Clock{
		Hour:   clamp(c.Hour, 0, 23),
		Minute: clamp(c.Minute, 0, 59),
		Second: clamp(c.Second, 0, 59),
	}
}

// String formats c as "HH:MM:SS".
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// State is the per-render input: the time of day and the display string of
// every digit widget kind. It is owned by the caller.
type State struct {
	Time   Clock
	Values map[Kind]string
}

// NewState returns a State at c seeded with DefaultValues.
func NewState(c Clock) State {
	return State{Time: c, Values: DefaultValues()}
}

// Set updates the display string of one kind. Values for time-derived kinds
// are accepted but overridden at render time.
func (s *State) Set(kind Kind, value string) {
	if s.Values == nil {
		s.Values = make(map[Kind]string)
	}
	s.Values[kind] = value
}

// SetNamed is Set keyed by the scene-file kind name. It reports false for an
// unknown kind and leaves s unchanged.
func (s *State) SetNamed(kind, value string) bool {
	k, ok := ParseKind(kind)
	if !ok {
		return false
	}
	s.Set(k, value)
	return true
}

// Derived returns a copy of s.Values with the time-derived kinds overwritten
// from s.Time: time "HH:MM", hour "HH", min "MM", second "SS", apm "AM"/"PM".
// s.Values itself is not modified.
func (s State) Derived() map[Kind]string {
	out := make(map[Kind]string, len(s.Values)+5)
	for k, v := range s.Values {
		out[k] = v
	}
	hh := fmt.Sprintf("%02d", s.Time.Hour)
	mm := fmt.Sprintf("%02d", s.Time.Minute)
	out[KindTime] = hh + ":" + mm
	out[KindHour] = hh
	out[KindMin] = mm
	out[KindSecond] = fmt.Sprintf("%02d", s.Time.Second)
	if s.Time.Hour < 12 {
		out[KindAPM] = "AM"
	} else {
		out[KindAPM] = "PM"
	}
	return out
}
