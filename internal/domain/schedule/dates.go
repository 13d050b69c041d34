package schedule

import (
	"time"

	"security_control_scheduler/internal/domain/control"
)

// Offsets are the per-scope calendar configuration points the date
// calculator consumes. Values arriving here are already clamped to
// their valid domains by the settings accessors (weekly 1-5, monthly
// 1-28, month offsets 1-12).
type Offsets struct {
	WeeklyStartDay       int // 1=Monday .. 5=Friday
	MonthlyStartDay      int // 1-28
	QuarterlyStartMonth  int // 1-12
	SixMonthlyStartMonth int // 1-12
	YearlyStartMonth     int // 1-12
}

// DefaultOffsets returns the catalog fallback offsets (everything 1:
// Monday starts, first of month, January-aligned periods).
func DefaultOffsets() Offsets {
	return Offsets{
		WeeklyStartDay:       control.Frequencies[control.FrequencyWeekly].DefaultOffset,
		MonthlyStartDay:      control.Frequencies[control.FrequencyMonthly].DefaultOffset,
		QuarterlyStartMonth:  control.Frequencies[control.FrequencyQuarterly].DefaultOffset,
		SixMonthlyStartMonth: control.Frequencies[control.FrequencySixMonthly].DefaultOffset,
		YearlyStartMonth:     control.Frequencies[control.FrequencyYearly].DefaultOffset,
	}
}

// DateOnly truncates t to midnight UTC. All schedule dates are pure
// calendar dates.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ScheduledDate computes the calendar date on which the given period of
// the given year begins.
//
// Unknown frequencies deliberately fall back to Date(year, period, 1)
// instead of failing: entity validation already guarantees catalog
// membership for persisted control points, so the calculator never
// needs an error path.
func ScheduledDate(freq control.Frequency, year, period int, off Offsets) time.Time {
	switch freq {
	case control.FrequencyWeekly:
		return isoWeekDate(year, period, off.WeeklyStartDay)
	case control.FrequencyMonthly:
		day := off.MonthlyStartDay
		if max := daysInMonth(year, period); day > max {
			day = max
		}
		return time.Date(year, time.Month(period), day, 0, 0, 0, 0, time.UTC)
	case control.FrequencyQuarterly:
		return periodStart(year, period, 3, off.QuarterlyStartMonth)
	case control.FrequencySixMonthly:
		return periodStart(year, period, 6, off.SixMonthlyStartMonth)
	case control.FrequencyYearly:
		return time.Date(year, time.Month(off.YearlyStartMonth), 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(year, time.Month(period), 1, 0, 0, 0, 0, time.UTC)
	}
}

// DueDate computes the deadline for a period that begins on scheduled.
// The guarantee due >= scheduled holds for every frequency and every
// valid offset: weekly start days are capped at Friday, monthly start
// days at 28, and the month-span rules always end on or after the start.
func DueDate(freq control.Frequency, scheduled time.Time) time.Time {
	switch freq {
	case control.FrequencyWeekly:
		// Next Friday on/after the scheduled date: end of working week.
		days := (int(time.Friday) - int(scheduled.Weekday()) + 7) % 7
		return scheduled.AddDate(0, 0, days)
	case control.FrequencyMonthly:
		return endOfMonth(scheduled)
	case control.FrequencyQuarterly:
		return endOfMonth(scheduled.AddDate(0, 2, 0))
	case control.FrequencySixMonthly:
		return endOfMonth(scheduled.AddDate(0, 5, 0))
	case control.FrequencyYearly:
		// A full 12-month span from the fiscal start month.
		return endOfMonth(scheduled.AddDate(0, 11, 0))
	default:
		return endOfMonth(scheduled)
	}
}

// PeriodDates computes the (scheduled, due) pair in one call.
func PeriodDates(freq control.Frequency, year, period int, off Offsets) (time.Time, time.Time) {
	scheduled := ScheduledDate(freq, year, period, off)
	return scheduled, DueDate(freq, scheduled)
}

// isoWeekDate returns the date of the given ISO-8601 weekday (1=Monday)
// in the given ISO week of year. January 4th is always inside ISO week 1.
func isoWeekDate(year, week, weekday int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	// Monday of ISO week 1.
	monday := jan4.AddDate(0, 0, -((int(jan4.Weekday()) + 6) % 7))
	return monday.AddDate(0, 0, (week-1)*7 + (weekday - 1))
}

// periodStart implements the shared quarterly/six-monthly arithmetic:
// month = (period-1)*step + startMonth, with months beyond December
// rolling the year forward and wrapping 1-based into 1-12.
func periodStart(year, period, step, startMonth int) time.Time {
	month := (period-1)*step + startMonth
	year += (month - 1) / 12
	month = (month-1)%12 + 1
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

func daysInMonth(year, month int) int {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func endOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC)
}
