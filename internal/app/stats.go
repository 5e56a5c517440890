package app

import (
	"math"

	"lms-client/internal/domain"
)

// Stats summarizes an aggregation pass for the dashboard header.
type Stats struct {
	Courses        int     `json:"courses"`
	Attempts       int     `json:"attempts"`
	Passed         int     `json:"passed"`
	Failed         int     `json:"failed"`
	AveragePercent float64 `json:"averagePercent"`
}

// Summarize computes dashboard stats over aggregated results. courseCount is
// the size of the viewer's course set (enrolled or taught).
func Summarize(courseCount int, results []domain.EnrichedResult) Stats {
	stats := Stats{Courses: courseCount, Attempts: len(results)}
	if len(results) == 0 {
		return stats
	}
	var total float64
	for _, r := range results {
		if r.Passed() {
			stats.Passed++
		} else {
			stats.Failed++
		}
		total += r.Percentage()
	}
	stats.AveragePercent = math.Round(total/float64(len(results))*100) / 100
	return stats
}
