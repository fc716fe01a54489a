package genotype

import (
	"math/rand/v2"

	"dinoevo/internal/config"
	"dinoevo/internal/model"
)

// Bounds of a neurone's origin. The lower y bound keeps sensors out of the
// ground gap's dead zone.
func xBounds(cfg config.Config) (float64, float64) {
	return 0, cfg.GameWidth - cfg.NeuroneWidth
}

func yBounds(cfg config.Config) (float64, float64) {
	return cfg.HoleHeight + cfg.HoleSafeMargin, cfg.GameHeight - cfg.NeuroneHeight
}

func randomCondition(rng *rand.Rand) model.Condition {
	if rng.IntN(2) == 0 {
		return model.ConditionClear
	}
	return model.ConditionCollide
}

func randomPolarity(rng *rand.Rand) model.Polarity {
	if rng.IntN(2) == 0 {
		return model.PolarityAssert
	}
	return model.PolarityVeto
}

func RandomNeurone(cfg config.Config, rng *rand.Rand) model.Neurone {
	minX, maxX := xBounds(cfg)
	minY, maxY := yBounds(cfg)
	return model.Neurone{
		X:         uniform(rng, minX, maxX),
		Y:         uniform(rng, minY, maxY),
		Width:     cfg.NeuroneWidth,
		Height:    cfg.NeuroneHeight,
		Condition: randomCondition(rng),
		Polarity:  randomPolarity(rng),
	}
}

// RandomWeb builds a web of [min, max) random neurones bound to a random enabled action.
func RandomWeb(cfg config.Config, rng *rand.Rand) model.NeuroneWeb {
	count := intRange(rng, cfg.WebCreationNeuronesMin, cfg.WebCreationNeuronesMax)
	neurones := make([]model.Neurone, 0, count)
	for i := 0; i < count; i++ {
		neurones = append(neurones, RandomNeurone(cfg, rng))
	}
	return model.NeuroneWeb{
		Neurones: neurones,
		Action:   randomElement(rng, cfg.Actions),
	}
}

// NewBrain builds a brain of [min, max) random webs.
func NewBrain(cfg config.Config, rng *rand.Rand) model.Brain {
	count := intRange(rng, cfg.BrainCreationWebsMin, cfg.BrainCreationWebsMax)
	webs := make([]model.NeuroneWeb, 0, count)
	for i := 0; i < count; i++ {
		webs = append(webs, RandomWeb(cfg, rng))
	}
	return model.Brain{Webs: webs}
}

// NewPopulation draws size fresh brains in order from rng.
func NewPopulation(cfg config.Config, rng *rand.Rand, size int) []model.Brain {
	out := make([]model.Brain, 0, size)
	for i := 0; i < size; i++ {
		out = append(out, NewBrain(cfg, rng))
	}
	return out
}
