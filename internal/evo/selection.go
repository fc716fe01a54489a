package evo

import (
	"errors"

	"dinoevo/internal/model"
	"dinoevo/internal/scape"
)

var (
	ErrEmptyPopulation = errors.New("no brain produced a score")
	ErrNoSurvivors     = errors.New("no survivors selected")
)

type ScoredBrain struct {
	Brain  model.Brain
	Score  uint64
	Energy float64
	Trace  scape.Trace
}

// SelectBest keeps every brain sharing the top score, in input order. When
// the top score reaches the ceiling, only the minimum-energy brains among them
// survive. Comparisons are exact.
func SelectBest(scored []ScoredBrain, ceiling uint64) ([]ScoredBrain, error) {
	if len(scored) == 0 {
		return nil, ErrNoSurvivors
	}
	best := scored[0].Score
	for _, s := range scored[1:] {
		if s.Score > best {
			best = s.Score
		}
	}
	top := make([]ScoredBrain, 0, len(scored))
	for _, s := range scored {
		if s.Score == best {
			top = append(top, s)
		}
	}
	if best < ceiling {
		return top, nil
	}

	minEnergy := top[0].Energy
	for _, s := range top[1:] {
		if s.Energy < minEnergy {
			minEnergy = s.Energy
		}
	}
	out := top[:0]
	for _, s := range top {
		if s.Energy == minEnergy {
			out = append(out, s)
		}
	}
	return out, nil
}

func brainsOf(scored []ScoredBrain) []model.Brain {
	out := make([]model.Brain, len(scored))
	for i, s := range scored {
		out[i] = s.Brain
	}
	return out
}
