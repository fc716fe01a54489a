package genotype

import (
	"math"
	"math/rand/v2"

	"dinoevo/internal/config"
	"dinoevo/internal/model"
)

// MutateNeurone resamples the origin around its current position, clamped to
// the field, and independently re-rolls condition and polarity.
func MutateNeurone(cfg config.Config, rng *rand.Rand, n model.Neurone) model.Neurone {
	minX, maxX := xBounds(cfg)
	minY, maxY := yBounds(cfg)
	lox := math.Max(n.X-cfg.NeuroneXMutationRange, minX)
	hix := math.Min(n.X+cfg.NeuroneXMutationRange, maxX)
	loy := math.Max(n.Y-cfg.NeuroneYMutationRange, minY)
	hiy := math.Min(n.Y+cfg.NeuroneYMutationRange, maxY)

	out := n
	out.X = clamp(uniform(rng, lox, hix), minX, maxX)
	out.Y = clamp(uniform(rng, loy, hiy), minY, maxY)
	if bernoulli(rng, cfg.NeuroneChangeConditionRate) {
		out.Condition = randomCondition(rng)
	}
	if bernoulli(rng, cfg.NeuroneChangePolarityRate) {
		out.Polarity = randomPolarity(rng)
	}
	return out
}

func MutateWeb(cfg config.Config, rng *rand.Rand, web model.NeuroneWeb) model.NeuroneWeb {
	neurones := make([]model.Neurone, len(web.Neurones))
	var marked []int
	for i, n := range web.Neurones {
		if bernoulli(rng, cfg.NeuroneRemoveRate) {
			marked = append(marked, i)
			neurones[i] = n
			continue
		}
		neurones[i] = MutateNeurone(cfg, rng, n)
	}
	neurones = removeMarked(neurones, marked)

	if bernoulli(rng, cfg.NeuroneWebAddNeuroneRate) {
		neurones = append(neurones, RandomNeurone(cfg, rng))
	}
	action := web.Action
	if bernoulli(rng, cfg.NeuroneWebChangeActionRate) {
		action = randomElement(rng, cfg.Actions)
	}
	return model.NeuroneWeb{Neurones: neurones, Action: action}
}

// MutateBrain returns a mutated offspring; brain itself is left untouched.
func MutateBrain(cfg config.Config, rng *rand.Rand, brain model.Brain) model.Brain {
	webs := make([]model.NeuroneWeb, len(brain.Webs))
	var marked []int
	for i, web := range brain.Webs {
		if bernoulli(rng, cfg.NeuroneWebRemoveRate) {
			marked = append(marked, i)
			continue
		}
		webs[i] = MutateWeb(cfg, rng, web)
	}
	webs = removeMarked(webs, marked)

	if bernoulli(rng, cfg.BrainAddWebRate) {
		webs = append(webs, RandomWeb(cfg, rng))
	}
	return model.Brain{Webs: webs}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
