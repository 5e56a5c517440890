package app

import (
	"context"
	"strings"

	"lms-client/internal/domain"
)

// CourseCatalog is the slice of the LMS API used for browsing and joining
// courses.
type CourseCatalog interface {
	EnrolledCourses(ctx context.Context, token string) ([]domain.Course, error)
	AvailableCourses(ctx context.Context, token string) ([]domain.Course, error)
	Enroll(ctx context.Context, token, courseID string) (string, error)
}

// CourseBrowser implements the student course-browsing view: what am I
// enrolled in, what else is open, join one.
type CourseBrowser struct {
	api CourseCatalog
}

func NewCourseBrowser(api CourseCatalog) *CourseBrowser {
	return &CourseBrowser{api: api}
}

// Available lists open courses the viewer has not joined yet. The available
// endpoint includes already-enrolled courses, so the enrolled set is
// subtracted by course ID.
func (b *CourseBrowser) Available(ctx context.Context, token string) ([]domain.Course, error) {
	if strings.TrimSpace(token) == "" {
		return nil, domain.ErrUnauthenticated
	}
	enrolled, err := b.api.EnrolledCourses(ctx, token)
	if err != nil {
		return nil, err
	}
	all, err := b.api.AvailableCourses(ctx, token)
	if err != nil {
		return nil, err
	}
	joined := make(map[string]struct{}, len(enrolled))
	for _, course := range enrolled {
		joined[course.CourseID] = struct{}{}
	}
	out := make([]domain.Course, 0, len(all))
	for _, course := range all {
		if course.CourseID == "" {
			continue
		}
		if _, ok := joined[course.CourseID]; ok {
			continue
		}
		out = append(out, course)
	}
	return out, nil
}

// Enroll joins the viewer to a course and returns the server's message.
func (b *CourseBrowser) Enroll(ctx context.Context, token, courseID string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", domain.ErrUnauthenticated
	}
	return b.api.Enroll(ctx, token, courseID)
}
