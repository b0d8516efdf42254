// Package datetime turns the optional date/time fragments of a command into a
// concrete timestamp. Parsing is strict: anything that is not exactly
// YYYY-MM-DD or HH:MM falls back to a fixed default instead of a guess.
package datetime

import (
	"log"
	"regexp"
	"strings"
	"time"
)

const (
	// DateLayout is the only accepted date format.
	DateLayout = "2006-01-02"
	// TimeLayout is the only accepted time format (24-hour).
	TimeLayout = "15:04"
	// DisplayLayout is used when echoing timestamps back to users.
	DisplayLayout = "2006-01-02 15:04"

	defaultHour = 9
)

var (
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// Normalizer resolves date and time strings relative to the current moment in a
// fixed location.
type Normalizer struct {
	loc    *time.Location
	now    func() time.Time
	logger *log.Logger
}

// New returns a Normalizer. A nil location means time.Local; a nil clock means time.Now.
func New(loc *time.Location, now func() time.Time, logger *log.Logger) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Normalizer{loc: loc, now: now, logger: logger}
}

// Resolve combines ParseDate and ParseTime into one timestamp.
func (n *Normalizer) Resolve(date, clock string) time.Time {
	return n.ParseTime(clock, n.ParseDate(date))
}

// ParseDate parses a YYYY-MM-DD string as midnight of that day. A missing or
// malformed value yields tomorrow at the current time of day.
func (n *Normalizer) ParseDate(value string) time.Time {
	now := n.now().In(n.loc)
	fallback := now.AddDate(0, 0, 1)

	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	if !datePattern.MatchString(value) {
		n.logf("datetime: date %q does not match %s, using tomorrow", value, DateLayout)
		return fallback
	}
	parsed, err := time.ParseInLocation(DateLayout, value, n.loc)
	if err != nil {
		n.logf("datetime: parse date %q: %v, using tomorrow", value, err)
		return fallback
	}
	return parsed
}

// ParseTime sets the HH:MM clock value on base. A missing or malformed value
// yields 09:00 on base's day. Seconds are always zeroed.
func (n *Normalizer) ParseTime(value string, base time.Time) time.Time {
	base = base.In(n.loc)
	fallback := atClock(base, defaultHour, 0, n.loc)

	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	if !timePattern.MatchString(value) {
		n.logf("datetime: time %q does not match %s, using 09:00", value, TimeLayout)
		return fallback
	}
	parsed, err := time.Parse(TimeLayout, value)
	if err != nil {
		n.logf("datetime: parse time %q: %v, using 09:00", value, err)
		return fallback
	}
	return atClock(base, parsed.Hour(), parsed.Minute(), n.loc)
}

// ParseRecurrence returns the recurrence rule verbatim. Rules are stored, not
// evaluated, so there is nothing to normalise yet.
func ParseRecurrence(value string) string {
	return value
}

// Format renders t for chat replies in the normalizer's location.
func (n *Normalizer) Format(t time.Time) string {
	return t.In(n.loc).Format(DisplayLayout)
}

func atClock(day time.Time, hour, minute int, loc *time.Location) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, loc)
}

func (n *Normalizer) logf(format string, args ...any) {
	if n.logger != nil {
		n.logger.Printf(format, args...)
	}
}
