// Package services provides orchestration on top of the store and the pure
// core: transaction mutation with event publishing, recurring-record
// materialization, and notification rules.
//
// This file implements dueness checking for recurring records. Each
// frequency has its own strategy so new frequencies slot in without touching
// the processor.
package services

import (
	"fmt"
	"time"

	"grana/internal/core"
)

// DuenessChecker decides whether a recurring record should be materialized
// given its last materialization time and the record's start date.
type DuenessChecker interface {
	IsDue(lastExecution, now time.Time, startDate time.Time) bool
}

// WeeklyChecker is due once 7 or more days have passed.
type WeeklyChecker struct{}

func (WeeklyChecker) IsDue(lastExecution, now time.Time, _ time.Time) bool {
	if lastExecution.IsZero() {
		return true
	}
	return now.Sub(lastExecution).Hours()/24 >= 7
}

// MonthlyChecker is due in a new month once the start date's day of month is
// reached, clamping the target day for short months.
type MonthlyChecker struct{}

func (MonthlyChecker) IsDue(lastExecution, now time.Time, startDate time.Time) bool {
	if lastExecution.IsZero() {
		return true
	}
	if lastExecution.Year() == now.Year() && lastExecution.Month() == now.Month() {
		return false
	}

	targetDay := startDate.Day()
	lastDayOfMonth := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if targetDay > lastDayOfMonth {
		targetDay = lastDayOfMonth
	}
	return now.Day() >= targetDay
}

// YearlyChecker is due in a new year once the start date's month and day are
// reached.
type YearlyChecker struct{}

func (YearlyChecker) IsDue(lastExecution, now time.Time, startDate time.Time) bool {
	if lastExecution.IsZero() {
		return true
	}
	if lastExecution.Year() == now.Year() {
		return false
	}

	targetMonth := int(startDate.Month())
	if int(now.Month()) < targetMonth {
		return false
	}
	if int(now.Month()) == targetMonth {
		targetDay := startDate.Day()
		lastDayOfMonth := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
		if targetDay > lastDayOfMonth {
			targetDay = lastDayOfMonth
		}
		return now.Day() >= targetDay
	}
	return true
}

// OneTimeChecker fires at most once: due only when never materialized.
type OneTimeChecker struct{}

func (OneTimeChecker) IsDue(lastExecution, _ time.Time, _ time.Time) bool {
	return lastExecution.IsZero()
}

var duenessStrategies = map[core.Frequency]DuenessChecker{
	core.Weekly:  WeeklyChecker{},
	core.Monthly: MonthlyChecker{},
	core.Yearly:  YearlyChecker{},
	core.OneTime: OneTimeChecker{},
}

// GetDuenessChecker returns the checker for a frequency, or an error for an
// unknown one.
func GetDuenessChecker(frequency core.Frequency) (DuenessChecker, error) {
	checker, ok := duenessStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("unknown frequency: %s", frequency)
	}
	return checker, nil
}
