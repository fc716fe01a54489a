package nn

import (
	"math"

	"dinoevo/internal/config"
	"dinoevo/internal/model"
)

// RestingCenter is the dinosaur's center while standing on the ground.
func RestingCenter(cfg config.Config) (float64, float64) {
	return cfg.DinosaurX + cfg.DinosaurWidth/2, cfg.DinosaurHeight / 2
}

func NeuroneEnergy(cfg config.Config, n model.Neurone) float64 {
	cx, cy := n.Rect().Center()
	rx, ry := RestingCenter(cfg)
	return math.Hypot(cx-rx, cy-ry)*cfg.NeuroneCostMult + cfg.NeuroneCostFlat
}

func WebEnergy(cfg config.Config, web model.NeuroneWeb) float64 {
	sum := 0.0
	for _, n := range web.Neurones {
		sum += NeuroneEnergy(cfg, n)
	}
	return sum*cfg.WebCostMult + cfg.WebCostFlat
}

// BrainEnergy is a structural cost used only to break ties at the score ceiling.
func BrainEnergy(cfg config.Config, brain model.Brain) float64 {
	sum := 0.0
	for _, web := range brain.Webs {
		sum += WebEnergy(cfg, web)
	}
	return sum
}
