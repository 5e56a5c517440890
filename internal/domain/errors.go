package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is returned before any network call when no bearer
	// token is available.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrNoViewer is returned when no user identity is stored locally.
	ErrNoViewer = errors.New("no signed-in user")
	// ErrNotFound indicates the server answered 404 for a single record.
	ErrNotFound = errors.New("not found")
)

// SourceScope names the aggregation branch a soft failure belongs to.
type SourceScope string

const (
	ScopeCourse     SourceScope = "course"
	ScopeAssessment SourceScope = "assessment"
	ScopeResult     SourceScope = "result"
)

// SourceError records a failure confined to one branch of an aggregation
// pass. The branch contributes nothing; the pass continues.
type SourceError struct {
	Scope SourceScope
	ID    string
	Err   error
}

func (e SourceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Scope, e.ID, e.Err)
}

func (e SourceError) Unwrap() error { return e.Err }
