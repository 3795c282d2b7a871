/*
clock.go - The in-fiction clock

PURPOSE:
  Resolves "today" for every time-driven rule in the system. The chat's
  roleplay date (rpDate) is authoritative when set; otherwise the real
  wall-clock day is used as a fallback. The fallback is never written
  back into persisted state - only explicit SetDate calls persist.

DATE SOURCES:
  "manual" - the user pinned a date from the dashboard
  "auto"   - a <DATE> tag scanned out of the chat transcript
  ""       - no in-fiction date; wall clock fallback in effect

SEE ALSO:
  - date.go: The Date value type
  - tags/scanner.go: Writes auto dates from DATE tags
*/
package engine

import "time"

// =============================================================================
// CLOCK - rpDate with wall-clock fallback
// =============================================================================

// DateSource identifies how the current in-fiction date was set.
type DateSource string

const (
	SourceAuto   DateSource = "auto"
	SourceManual DateSource = "manual"
)

// ClockState is the persisted portion of the clock. It lives inside the
// per-conversation state tree; the Clock itself is rebuilt around it.
type ClockState struct {
	RPDate Date       `json:"rpDate"`
	Source DateSource `json:"rpDateSource,omitempty"`
}

// Clock resolves the current in-fiction date.
type Clock struct {
	state *ClockState
	now   func() time.Time
}

// NewClock wraps persisted clock state. now may be nil (defaults to
// time.Now); tests inject a fixed function.
func NewClock(state *ClockState, now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{state: state, now: now}
}

// Today returns the in-fiction date if one is set, else the wall-clock day.
func (c *Clock) Today() Date {
	if !c.state.RPDate.IsZero() {
		return c.state.RPDate
	}
	return DateOf(c.now())
}

// Now returns the real wall-clock time. Used only for short-lived
// freshness windows (recent-event notices), never for simulation rules.
func (c *Clock) Now() time.Time { return c.now() }

// SetDate pins the in-fiction date.
func (c *Clock) SetDate(d Date, source DateSource) {
	c.state.RPDate = d
	c.state.Source = source
}

// ClearDate drops back to wall-clock fallback.
func (c *Clock) ClearDate() {
	c.state.RPDate = Date{}
	c.state.Source = ""
}

// Source reports how the current date was set ("" when on fallback).
func (c *Clock) Source() DateSource {
	if c.state.RPDate.IsZero() {
		return ""
	}
	return c.state.Source
}
