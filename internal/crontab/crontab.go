// Package crontab answers questions about standard 5-field crontab
// expressions: whether they parse, when they fire next, and whether they
// fire in a given minute.
package crontab

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Parse parses a 5-field expression. Descriptors such as @hourly and
// CRON_TZ prefixes are rejected; the timezone comes from the caller.
func Parse(expr string) (cron.Schedule, error) {
	expr = strings.TrimSpace(expr)
	if len(strings.Fields(expr)) != 5 {
		return nil, fmt.Errorf("crontab %q: expected 5 fields", expr)
	}
	sched, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("crontab %q: %w", expr, err)
	}
	return sched, nil
}

// Validate reports whether expr is a usable 5-field expression.
func Validate(expr string) error {
	_, err := Parse(expr)
	return err
}

// Next returns the first firing time strictly after t, evaluated in loc.
func Next(expr string, t time.Time, loc *time.Location) (time.Time, error) {
	sched, err := Parse(expr)
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	next := sched.Next(t.In(loc))
	if next.IsZero() {
		return time.Time{}, fmt.Errorf("crontab %q: never fires", expr)
	}
	return next, nil
}

// Fires reports whether expr fires in the minute containing t, evaluated in loc.
func Fires(expr string, t time.Time, loc *time.Location) (bool, error) {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	minute := time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), local.Minute(), 0, 0, loc)

	next, err := Next(expr, minute.Add(-time.Second), loc)
	if err != nil {
		return false, err
	}
	return next.Equal(minute), nil
}
