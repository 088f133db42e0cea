// Package services provides business logic and orchestration services.
//
// This file implements the occurrence calculator for monthly recurring
// rules. It is a pure function: given a rule and an as-of date it yields
// the ordered list of occurrence dates that are due but not yet posted,
// with no I/O involved.
package services

import (
	"time"

	"github.com/PierreBrethes/life-map-back/internal/core"
)

// Occurrences returns the due occurrence dates for a monthly recurring rule,
// in ascending order, at UTC-midnight precision.
//
// The anchor month is the month of the rule's watermark (LastProcessed), or
// of StartDate when nothing has been posted yet. Candidates are generated one
// calendar month at a time starting from the month after the anchor, so the
// occurrence nominally due in the start month itself is never generated.
//
// Per candidate month the nominal day is clamped to the month's length
// (dayOfMonth=31 posts on Feb 28/29, Apr 30, and so on). The sequence stops
// at the first candidate that reaches EndDate, lands on asOf itself, or lies
// in a month after asOf's. Only candidates strictly before asOf are due;
// a same-day candidate is left for a later run once asOf has moved past it.
func Occurrences(rule core.RecurringRule, asOf time.Time) []time.Time {
	today := core.DateOnly(asOf)

	anchor := rule.StartDate.UTC()
	if !rule.LastProcessed.IsZero() {
		anchor = rule.LastProcessed.UTC()
	}

	var due []time.Time
	year, month := anchor.Year(), anchor.Month()
	for {
		// Advance one calendar month.
		if month == time.December {
			month = time.January
			year++
		} else {
			month++
		}

		// Past the as-of month: nothing further can be due.
		if year > today.Year() || (year == today.Year() && month > today.Month()) {
			break
		}

		actualDay := rule.DayOfMonth
		if days := core.DaysInMonth(year, month); actualDay > days {
			actualDay = days
		}
		candidate := time.Date(year, month, actualDay, 0, 0, 0, 0, time.UTC)

		// An occurrence on or after the end date ends the rule's sequence.
		if !rule.EndDate.IsZero() && !candidate.Before(core.DateOnly(rule.EndDate)) {
			break
		}

		if !candidate.Before(today) {
			// Same-day or future: wait for a later run.
			break
		}
		due = append(due, candidate)
	}

	return due
}
