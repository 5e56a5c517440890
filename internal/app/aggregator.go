package app

import (
	"context"
	"sort"
	"strings"

	"lms-client/internal/domain"
)

// ResultSource is the slice of the LMS API the aggregator reads from.
type ResultSource interface {
	EnrolledCourses(ctx context.Context, token string) ([]domain.Course, error)
	TaughtCourses(ctx context.Context, token string) ([]domain.Course, error)
	AssessmentsByCourse(ctx context.Context, token, courseID string) ([]domain.Assessment, error)
	ResultsByAssessment(ctx context.Context, token, assessmentID string) ([]domain.Result, error)
	ResultByID(ctx context.Context, token, resultID string) (domain.Result, error)
}

// ResultCache keeps merged per-assessment rows for the lifetime of a view so
// repeated aggregation passes do not re-hit the bulk endpoint.
type ResultCache interface {
	Fetch(ctx context.Context, assessmentID string, load func(context.Context) ([]domain.EnrichedResult, error)) ([]domain.EnrichedResult, error)
	Clear()
}

// Aggregator produces the flat, date-sorted list of assessment results for
// a viewer by composing the course list, per-course assessment lists, and
// per-assessment result lists, plus locally hinted result IDs.
type Aggregator struct {
	api     ResultSource
	hints   *HintCache
	results ResultCache
}

func NewAggregator(api ResultSource, hints *HintCache, results ResultCache) *Aggregator {
	return &Aggregator{api: api, hints: hints, results: results}
}

// CourseSet resolves the viewer's courses: enrolled for students, taught for
// instructors. Failure here is fatal to the whole aggregation.
func (a *Aggregator) CourseSet(ctx context.Context, viewer domain.Viewer, token string) ([]domain.Course, error) {
	if viewer.Role == domain.RoleInstructor {
		return a.api.TaughtCourses(ctx, token)
	}
	return a.api.EnrolledCourses(ctx, token)
}

// Aggregate walks course -> assessments -> results and returns every result
// visible to the viewer, enriched and sorted by attempt date descending.
// Failures below the course-set fetch are confined to their branch and come
// back as SourceErrors; the listing stays best-effort complete. Results
// reachable through both the hint path and the bulk path are deduplicated by
// result ID, first occurrence winning.
func (a *Aggregator) Aggregate(ctx context.Context, viewer domain.Viewer, token string) ([]domain.EnrichedResult, []domain.SourceError, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil, domain.ErrUnauthenticated
	}

	courses, err := a.CourseSet(ctx, viewer, token)
	if err != nil {
		return nil, nil, err
	}

	var out []domain.EnrichedResult
	var soft []domain.SourceError
	seen := make(map[string]struct{})

	for _, course := range courses {
		if course.CourseID == "" {
			continue
		}
		assessments, err := a.api.AssessmentsByCourse(ctx, token, course.CourseID)
		if err != nil {
			soft = append(soft, domain.SourceError{Scope: domain.ScopeCourse, ID: course.CourseID, Err: err})
			continue
		}
		for _, assessment := range assessments {
			if assessment.AssessmentID == "" {
				continue
			}
			rows, errs := a.assessmentResults(ctx, viewer, token, course, assessment)
			soft = append(soft, errs...)
			for _, row := range rows {
				if row.ResultID != "" {
					if _, dup := seen[row.ResultID]; dup {
						continue
					}
					seen[row.ResultID] = struct{}{}
				}
				out = append(out, row)
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AttemptDate.After(out[j].AttemptDate)
	})
	return out, soft, nil
}

// assessmentResults merges the hint-directed lookups with the bulk listing
// for one assessment, going through the result cache so a second pass in the
// same view lifetime is served from memory.
func (a *Aggregator) assessmentResults(ctx context.Context, viewer domain.Viewer, token string, course domain.Course, assessment domain.Assessment) ([]domain.EnrichedResult, []domain.SourceError) {
	var soft []domain.SourceError
	rows, err := a.results.Fetch(ctx, assessment.AssessmentID, func(ctx context.Context) ([]domain.EnrichedResult, error) {
		rows, errs := a.loadAssessment(ctx, viewer, token, course, assessment)
		soft = append(soft, errs...)
		return rows, nil
	})
	if err != nil {
		soft = append(soft, domain.SourceError{Scope: domain.ScopeAssessment, ID: assessment.AssessmentID, Err: err})
		return nil, soft
	}
	return rows, soft
}

func (a *Aggregator) loadAssessment(ctx context.Context, viewer domain.Viewer, token string, course domain.Course, assessment domain.Assessment) ([]domain.EnrichedResult, []domain.SourceError) {
	var rows []domain.EnrichedResult
	var soft []domain.SourceError

	// Hint path: result IDs remembered by the submission flow. IDs may be
	// stale or inaccessible; each one fails alone.
	ids, err := a.hints.ResultIDs(ctx, assessment.AssessmentID)
	if err != nil {
		soft = append(soft, domain.SourceError{Scope: domain.ScopeAssessment, ID: assessment.AssessmentID, Err: err})
	}
	for _, id := range ids {
		result, err := a.api.ResultByID(ctx, token, id)
		if err != nil {
			soft = append(soft, domain.SourceError{Scope: domain.ScopeResult, ID: id, Err: err})
			continue
		}
		rows = append(rows, enrich(result, course, assessment))
	}

	// Bulk path: everything the server lists for the assessment. Students
	// only keep their own rows; instructors see every student's.
	bulk, err := a.api.ResultsByAssessment(ctx, token, assessment.AssessmentID)
	if err != nil {
		soft = append(soft, domain.SourceError{Scope: domain.ScopeAssessment, ID: assessment.AssessmentID, Err: err})
		return rows, soft
	}
	for _, result := range bulk {
		if viewer.Role != domain.RoleInstructor && !strings.EqualFold(result.UserID, viewer.UserID) {
			continue
		}
		rows = append(rows, enrich(result, course, assessment))
	}
	return rows, soft
}

func enrich(r domain.Result, course domain.Course, assessment domain.Assessment) domain.EnrichedResult {
	if r.AssessmentID == "" {
		r.AssessmentID = assessment.AssessmentID
	}
	// Rows from the bulk endpoint sometimes carry their own max score;
	// otherwise it comes from the assessment.
	if r.MaxScore <= 0 {
		r.MaxScore = assessment.MaxScore
	}
	return domain.EnrichedResult{
		Result:          r,
		AssessmentTitle: assessment.Title,
		CourseID:        course.CourseID,
		CourseTitle:     course.Title,
	}
}
