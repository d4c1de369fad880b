package core

import (
	"context"

	"salonbook/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Pipeline runs its steps in order and stops at the first failure. Steps
// after the failing one never run, so nothing later in the pipeline observes
// partial state.
type Pipeline[S any] struct {
	name  string
	steps []Step[S]
}

func NewPipeline[S any](name string, steps ...Step[S]) *Pipeline[S] {
	return &Pipeline[S]{name: name, steps: steps}
}

func (p *Pipeline[S]) Name() string {
	return p.name
}

func (p *Pipeline[S]) Steps() []string {
	names := make([]string, 0, len(p.steps))
	for _, s := range p.steps {
		names = append(names, s.Name)
	}
	return names
}

func (p *Pipeline[S]) Run(ctx context.Context, state *S) error {
	ctx, span := tracing.Tracer().Start(ctx, p.name)
	defer span.End()

	for _, step := range p.steps {
		if err := p.runStep(ctx, step, state); err != nil {
			span.SetAttributes(attribute.String("pipeline.failed_step", step.Name))
			span.SetStatus(codes.Error, err.Error())
			return &StepError{Pipeline: p.name, Step: step.Name, Err: err}
		}
	}
	return nil
}

func (p *Pipeline[S]) runStep(ctx context.Context, step Step[S], state *S) error {
	ctx, span := tracing.Tracer().Start(ctx, p.name+"."+step.Name)
	defer span.End()

	if err := step.Execute(ctx, state); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
