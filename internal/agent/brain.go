package agent

import (
	"dinoevo/internal/model"
	"dinoevo/internal/nn"
)

// BrainAgent answers each tick with the activations of a fixed brain.
type BrainAgent struct {
	id    string
	brain model.Brain
}

func NewBrainAgent(id string, brain model.Brain) *BrainAgent {
	return &BrainAgent{id: id, brain: brain}
}

func (a *BrainAgent) ID() string {
	return a.id
}

func (a *BrainAgent) Decide(obstacles []model.Rect) model.ActionSet {
	return nn.Activations(a.brain, obstacles)
}

func (a *BrainAgent) Brain() model.Brain {
	return a.brain
}
