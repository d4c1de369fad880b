package core

import (
	"context"
	"fmt"
)

// Step is one named stage of a pipeline over a shared state S.
type Step[S any] struct {
	Name    string
	Execute func(ctx context.Context, state *S) error
}

func NewStep[S any](name string, execute func(ctx context.Context, state *S) error) Step[S] {
	return Step[S]{Name: name, Execute: execute}
}

// StepError names the step that aborted a pipeline.
type StepError struct {
	Pipeline string
	Step     string
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %s step failed: %v", e.Pipeline, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
