package domain

import (
	"strings"
	"time"
)

// Role distinguishes the two kinds of viewers the API serves.
type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
)

// ParseRole normalizes a role string from the API or config.
func ParseRole(raw string) Role {
	if strings.EqualFold(strings.TrimSpace(raw), string(RoleInstructor)) {
		return RoleInstructor
	}
	return RoleStudent
}

// Viewer is the authenticated user results are aggregated for.
type Viewer struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

// Course is a read-only copy of a server-side course record.
type Course struct {
	CourseID     string `json:"courseId"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	InstructorID string `json:"instructorId"`
	MediaURL     string `json:"mediaUrl,omitempty"`
	CourseURL    string `json:"courseUrl,omitempty"`
}

// Assessment belongs to exactly one course.
type Assessment struct {
	AssessmentID  string  `json:"assessmentId"`
	CourseID      string  `json:"courseId"`
	Title         string  `json:"title"`
	QuestionCount int     `json:"questionCount"`
	MaxScore      float64 `json:"maxScore"`
}

// Result records one attempt at an assessment. Some endpoints include the
// assessment's max score on the row itself; zero means absent.
type Result struct {
	ResultID     string    `json:"resultId"`
	AssessmentID string    `json:"assessmentId"`
	UserID       string    `json:"userId"`
	Score        float64   `json:"score"`
	MaxScore     float64   `json:"maxScore,omitempty"`
	AttemptDate  time.Time `json:"attemptDate"`
}

// EnrichedResult is a Result tagged with display fields copied from its
// owning assessment and course at aggregation time. It is rebuilt on every
// aggregation pass and never persisted back to the server.
type EnrichedResult struct {
	Result
	AssessmentTitle string `json:"assessmentTitle"`
	CourseID        string `json:"courseId"`
	CourseTitle     string `json:"courseTitle"`
}

// Percentage is the attempt score relative to max, in percent. The server is
// supposed to keep score <= maxScore but the client does not rely on it, so
// values above 100 are possible. A non-positive max yields 0.
func (r EnrichedResult) Percentage() float64 {
	if r.MaxScore <= 0 {
		return 0
	}
	return r.Score / r.MaxScore * 100
}

// Passed reports whether the attempt scored at least half of the max.
func (r EnrichedResult) Passed() bool {
	if r.MaxScore <= 0 {
		return false
	}
	return r.Score/r.MaxScore >= 0.5
}
