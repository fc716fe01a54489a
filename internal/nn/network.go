package nn

import "dinoevo/internal/model"

// NeuroneActivation returns the neurone's polarity when its condition holds
// against the obstacle boxes.
func NeuroneActivation(n model.Neurone, obstacles []model.Rect) (model.Polarity, bool) {
	sensor := n.Rect()
	for _, box := range obstacles {
		if sensor.Overlaps(box) {
			if n.Condition == model.ConditionCollide {
				return n.Polarity, true
			}
			return "", false
		}
	}
	if n.Condition == model.ConditionClear {
		return n.Polarity, true
	}
	return "", false
}

// WebActivated walks the neurones in order. The first veto wins outright;
// otherwise at least one assert is required.
func WebActivated(web model.NeuroneWeb, obstacles []model.Rect) bool {
	asserted := false
	for _, n := range web.Neurones {
		polarity, ok := NeuroneActivation(n, obstacles)
		if !ok {
			continue
		}
		if polarity == model.PolarityVeto {
			return false
		}
		asserted = true
	}
	return asserted
}

// Activations returns the union of actions bound to activated webs.
func Activations(brain model.Brain, obstacles []model.Rect) model.ActionSet {
	var set model.ActionSet
	for _, web := range brain.Webs {
		if WebActivated(web, obstacles) {
			set = set.Add(web.Action)
		}
	}
	return set
}

// ActivatedWebs reports, per web index, whether it fired. Renderers use it
// to highlight webs.
func ActivatedWebs(brain model.Brain, obstacles []model.Rect) []bool {
	out := make([]bool, len(brain.Webs))
	for i, web := range brain.Webs {
		out[i] = WebActivated(web, obstacles)
	}
	return out
}
