// Package shiftcal implements shift-aware time arithmetic for work
// centers: computing when a given amount of working time completes,
// finding the next shift opening, and interval overlap predicates.
// All instants are UTC; the weekly shift schedule is interpreted in UTC
// with no timezone conversion.
package shiftcal

import (
	"fmt"
	"time"

	"github.com/joshharrison/reflow/internal/schedule"
)

// Iteration caps. Misconfigured shift schedules fail fast with a clear
// error instead of looping.
const (
	maxWorkIterations = 1000
	maxShiftScanDays  = 100
)

// Calendar is a work center's weekly shift schedule, one optional shift
// per day, indexed Sunday=0 through Saturday=6.
type Calendar struct {
	byDay [7]*schedule.Shift
}

// New builds a Calendar from a work center's shifts. Later entries for
// the same day win; out-of-range days are ignored.
func New(shifts []schedule.Shift) *Calendar {
	c := &Calendar{}
	for i := range shifts {
		s := shifts[i]
		if s.DayOfWeek < 0 || s.DayOfWeek > 6 {
			continue
		}
		c.byDay[s.DayOfWeek] = &s
	}
	return c
}

// Empty reports whether the calendar has no shifts at all.
func (c *Calendar) Empty() bool {
	for _, s := range c.byDay {
		if s != nil {
			return false
		}
	}
	return true
}

// shiftFor returns the shift scheduled for the given day, if any.
func (c *Calendar) shiftFor(day time.Weekday) *schedule.Shift {
	return c.byDay[int(day)]
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func startOfNextDay(t time.Time) time.Time {
	return startOfDay(t).Add(24 * time.Hour)
}

// shiftBounds returns the shift window for the day containing t,
// or ok=false when that day has no shift.
func (c *Calendar) shiftBounds(t time.Time) (start, end time.Time, ok bool) {
	s := c.shiftFor(t.UTC().Weekday())
	if s == nil {
		return time.Time{}, time.Time{}, false
	}
	day := startOfDay(t)
	return day.Add(time.Duration(s.StartHour) * time.Hour),
		day.Add(time.Duration(s.EndHour) * time.Hour), true
}

// WithinShift reports whether the instant falls inside a shift window.
// The window is half-open: the shift end instant itself is outside.
func (c *Calendar) WithinShift(t time.Time) bool {
	start, end, ok := c.shiftBounds(t)
	if !ok {
		return false
	}
	return !t.Before(start) && t.Before(end)
}

// NextShiftStart returns the smallest instant >= from that is the start
// of some scheduled shift, scanning day by day up to the cap.
func (c *Calendar) NextShiftStart(from time.Time) (time.Time, error) {
	day := startOfDay(from)
	for i := 0; i < maxShiftScanDays; i++ {
		if s := c.shiftFor(day.Weekday()); s != nil {
			candidate := day.Add(time.Duration(s.StartHour) * time.Hour)
			if !candidate.Before(from) {
				return candidate, nil
			}
		}
		day = day.Add(24 * time.Hour)
	}
	return time.Time{}, fmt.Errorf("no shift start within %d days of %s", maxShiftScanDays, from.Format(time.RFC3339))
}

// AlignToShift returns t unchanged when it is inside a shift, otherwise
// the next shift start at or after t.
func (c *Calendar) AlignToShift(t time.Time) (time.Time, error) {
	if c.WithinShift(t) {
		return t, nil
	}
	return c.NextShiftStart(t)
}

// EndAfterWorking computes the first instant at which durationMinutes of
// shift-inside working time has elapsed starting at or after start. Time
// outside shift windows does not count. A zero duration returns start
// unchanged, without shift alignment.
func (c *Calendar) EndAfterWorking(start time.Time, durationMinutes int) (time.Time, error) {
	if durationMinutes < 0 {
		return time.Time{}, fmt.Errorf("negative duration %d", durationMinutes)
	}
	if durationMinutes == 0 {
		return start, nil
	}

	cursor := start.UTC()
	remaining := durationMinutes
	for i := 0; i < maxWorkIterations; i++ {
		shiftStart, shiftEnd, ok := c.shiftBounds(cursor)
		if !ok {
			cursor = startOfNextDay(cursor)
			continue
		}
		if cursor.Before(shiftStart) {
			cursor = shiftStart
		}
		if !cursor.Before(shiftEnd) {
			cursor = startOfNextDay(cursor)
			continue
		}
		available := int(shiftEnd.Sub(cursor) / time.Minute)
		if available >= remaining {
			return cursor.Add(time.Duration(remaining) * time.Minute), nil
		}
		remaining -= available
		cursor = startOfNextDay(cursor)
	}
	return time.Time{}, fmt.Errorf("no end found within %d iterations for %d minutes from %s", maxWorkIterations, durationMinutes, start.Format(time.RFC3339))
}

// WorkingMinutes counts the shift-inside minutes in [start, end).
func (c *Calendar) WorkingMinutes(start, end time.Time) int {
	if !end.After(start) {
		return 0
	}
	total := 0
	cursor := start.UTC()
	for cursor.Before(end) {
		shiftStart, shiftEnd, ok := c.shiftBounds(cursor)
		if !ok {
			cursor = startOfNextDay(cursor)
			continue
		}
		if cursor.Before(shiftStart) {
			cursor = shiftStart
			continue
		}
		if !cursor.Before(shiftEnd) {
			cursor = startOfNextDay(cursor)
			continue
		}
		stop := shiftEnd
		if end.Before(stop) {
			stop = end
		}
		total += int(stop.Sub(cursor) / time.Minute)
		cursor = startOfNextDay(cursor)
	}
	return total
}

// Overlaps reports whether two half-open intervals [a0, a1) and [b0, b1)
// intersect. Adjacent intervals (a1 == b0) do not overlap.
func Overlaps(a0, a1, b0, b1 time.Time) bool {
	return a0.Before(b1) && a1.After(b0)
}

// OverlapsMaintenance reports whether [start, end) intersects any of the
// maintenance windows.
func OverlapsMaintenance(start, end time.Time, windows []schedule.MaintenanceWindow) bool {
	for _, w := range windows {
		if Overlaps(start, end, w.Start, w.End) {
			return true
		}
	}
	return false
}
