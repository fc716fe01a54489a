package agent

import (
	"sync"

	"dinoevo/internal/model"
)

// ManualAgent queues externally sourced actions and hands them to the game
// on the next tick. Push is safe to call from other goroutines.
type ManualAgent struct {
	id string

	mu      sync.Mutex
	pending model.ActionSet
}

func NewManualAgent(id string) *ManualAgent {
	return &ManualAgent{id: id}
}

func (a *ManualAgent) ID() string {
	return a.id
}

func (a *ManualAgent) Push(action model.Action) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending = a.pending.Add(action)
}

// Decide drains the queued actions.
func (a *ManualAgent) Decide([]model.Rect) model.ActionSet {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := a.pending
	a.pending = 0
	return out
}
