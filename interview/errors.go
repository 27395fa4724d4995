package interview

import (
	"errors"
	"fmt"
)

// ErrNoProject means the user has no project to interview on. It is returned before any backend call.
var ErrNoProject = errors.New("user has no project")

// UpstreamKind names the backend that failed.
type UpstreamKind string

const (
	UpstreamGeneration UpstreamKind = "generation"
	UpstreamSynthesis  UpstreamKind = "synthesis"
)

// UpstreamError is the single failure signal for generation and synthesis backends.
type UpstreamError struct {
	Kind UpstreamKind
	Err  error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Kind, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func generationFailure(err error) error {
	return &UpstreamError{Kind: UpstreamGeneration, Err: err}
}

func synthesisFailure(err error) error {
	return &UpstreamError{Kind: UpstreamSynthesis, Err: err}
}
