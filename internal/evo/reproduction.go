package evo

import (
	"fmt"
	"math/rand/v2"

	"dinoevo/internal/genotype"
	"dinoevo/internal/model"
)

// Reproduce builds the next generation: populationSize offspring mutated
// round-robin from a random starting survivor, followed by the elites.
// maxElites < 0 keeps every survivor; otherwise at most maxElites distinct
// survivors are carried over unchanged.
func Reproduce(rng *rand.Rand, survivors []model.Brain, populationSize, maxElites int, op Operator) ([]model.Brain, error) {
	if len(survivors) == 0 {
		return nil, ErrNoSurvivors
	}
	start := rng.IntN(len(survivors))
	return reproduceFrom(rng, start, survivors, populationSize, maxElites, op)
}

func reproduceFrom(rng *rand.Rand, start int, survivors []model.Brain, populationSize, maxElites int, op Operator) ([]model.Brain, error) {
	next := make([]model.Brain, 0, populationSize+len(survivors))
	i := start
	for slot := 0; slot < populationSize; slot++ {
		child, err := op.Apply(rng, survivors[i])
		if err != nil {
			return nil, fmt.Errorf("%s on survivor %d: %w", op.Name(), i, err)
		}
		next = append(next, child)
		i = (i + 1) % len(survivors)
	}

	if maxElites < 0 || len(survivors) <= maxElites {
		for _, s := range survivors {
			next = append(next, genotype.CloneBrain(s))
		}
		return next, nil
	}
	pool := make([]int, len(survivors))
	for k := range pool {
		pool[k] = k
	}
	for k := 0; k < maxElites; k++ {
		j := rng.IntN(len(pool))
		next = append(next, genotype.CloneBrain(survivors[pool[j]]))
		pool = append(pool[:j], pool[j+1:]...)
	}
	return next, nil
}
