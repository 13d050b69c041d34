package app

import (
	"math"

	"security_control_scheduler/internal/domain/schedule"
)

// YearStatistics summarizes one year of schedules within a scope, for
// external consumers such as dashboards.
type YearStatistics struct {
	Year   int
	Counts schedule.StatusCounts

	// CompletionRate is completed/total in percent, rounded to one
	// decimal place. 0 when the scope holds no schedules.
	CompletionRate float64
}

// CompactCompletionRate returns the rate rounded to whole percent, the
// form compact monthly views use.
func (s YearStatistics) CompactCompletionRate() int {
	return int(math.Round(s.CompletionRate))
}

func completionRate(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(completed)/float64(total)*1000) / 10
}
