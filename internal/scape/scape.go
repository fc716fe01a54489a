package scape

import (
	"context"
	"errors"

	"dinoevo/internal/model"
)

// ErrClockOverflow reports a simulated deadline that cannot be represented.
var ErrClockOverflow = errors.New("simulated clock overflow")

// Fitness is the number of obstacles cleared before a terminal state.
type Fitness uint64

type Trace map[string]any

// Agent chooses the actions for one tick from the current obstacle boxes.
type Agent interface {
	ID() string
	Decide(obstacles []model.Rect) model.ActionSet
}

type Scape interface {
	Name() string
	Evaluate(ctx context.Context, agent Agent) (Fitness, Trace, error)
}
