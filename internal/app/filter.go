package app

import (
	"fmt"

	"lms-client/internal/domain"
)

// Filter selects a pass/fail slice of an aggregated result list.
type Filter string

const (
	FilterAll    Filter = "all"
	FilterPassed Filter = "passed"
	FilterFailed Filter = "failed"
)

func ParseFilter(raw string) (Filter, error) {
	switch Filter(raw) {
	case FilterAll, FilterPassed, FilterFailed, "":
		if raw == "" {
			return FilterAll, nil
		}
		return Filter(raw), nil
	default:
		return "", fmt.Errorf("unknown filter %q (want all, passed, or failed)", raw)
	}
}

// ApplyFilter is computed per call over the already-aggregated list; the
// cut is 50 percent, and rows without a usable max score count as failed.
func ApplyFilter(results []domain.EnrichedResult, filter Filter) []domain.EnrichedResult {
	if filter == FilterAll {
		return results
	}
	out := make([]domain.EnrichedResult, 0, len(results))
	for _, r := range results {
		if r.Passed() == (filter == FilterPassed) {
			out = append(out, r)
		}
	}
	return out
}
