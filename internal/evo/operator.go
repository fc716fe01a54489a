package evo

import (
	"math/rand/v2"

	"dinoevo/internal/config"
	"dinoevo/internal/genotype"
	"dinoevo/internal/model"
)

// Operator produces an offspring from a parent using the orchestrator RNG.
// It must not modify the parent.
type Operator interface {
	Name() string
	Apply(rng *rand.Rand, brain model.Brain) (model.Brain, error)
}

// BrainMutation is the structural mutation of a whole brain.
type BrainMutation struct {
	Config config.Config
}

func (BrainMutation) Name() string {
	return "brain_mutation"
}

func (m BrainMutation) Apply(rng *rand.Rand, brain model.Brain) (model.Brain, error) {
	return genotype.MutateBrain(m.Config, rng, brain), nil
}
