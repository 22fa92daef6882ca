package planner

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Model turns a prompt into raw completion text.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

type Result struct {
	Plan   *Plan
	Source Source
	// Reason is the model or parse failure that caused a fallback, nil otherwise.
	Reason error
}

type Planner struct {
	model  Model
	logger *zap.Logger
}

// New returns a Planner. A nil model makes every request use the fallback.
func New(model Model, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{model: model, logger: logger}
}

// Plan always returns a plan. Model and parse failures are logged and
// absorbed into the fallback itinerary.
func (p *Planner) Plan(ctx context.Context, req Request) Result {
	days := DayCount(req.StartDate, req.EndDate)
	log := p.logger.With(zap.String("destination", req.Destination), zap.Int("days", days))

	plan, err := p.fromModel(ctx, req, days)
	if err == nil {
		log.Info("Itinerary generated", zap.String("source", string(SourceModel)))
		return Result{Plan: plan, Source: SourceModel}
	}

	log.Warn("Falling back to template itinerary", zap.Error(err))
	return Result{
		Plan:   Fallback(req.Destination, req.StartDate, days, req.Budget),
		Source: SourceFallback,
		Reason: err,
	}
}

func (p *Planner) fromModel(ctx context.Context, req Request, days int) (*Plan, error) {
	if p.model == nil {
		return nil, errors.Join(ErrModelUnavailable, errors.New("no model configured"))
	}
	raw, err := p.model.Generate(ctx, BuildPrompt(req))
	if err != nil {
		return nil, err
	}
	return ParseResponse(raw, req.StartDate, days)
}
