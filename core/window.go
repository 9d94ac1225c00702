package core

import (
	"time"

	"github.com/huangsam/attrib/schema"
)

// Window is a closed analysis interval. A zero-valued bound leaves that side
// of the interval open, so the zero Window admits every timestamp.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether ts falls within the window, inclusive both ends.
func (w Window) Contains(ts time.Time) bool {
	if !w.Start.IsZero() && ts.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && ts.After(w.End) {
		return false
	}
	return true
}

// IsOpen reports whether neither bound is set.
func (w Window) IsOpen() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// FilterDecisions returns the decisions whose client timestamp falls within
// the window. Input order is preserved; the input slice is not modified.
func FilterDecisions(decisions []schema.Decision, w Window) []schema.Decision {
	if w.IsOpen() {
		return decisions
	}
	var out []schema.Decision
	for _, d := range decisions {
		if w.Contains(d.Timestamp) {
			out = append(out, d)
		}
	}
	return out
}

// FilterEvents returns the events whose client timestamp falls within the
// window. Input order is preserved; the input slice is not modified.
func FilterEvents(events []schema.Event, w Window) []schema.Event {
	if w.IsOpen() {
		return events
	}
	var out []schema.Event
	for _, e := range events {
		if w.Contains(e.Timestamp) {
			out = append(out, e)
		}
	}
	return out
}
