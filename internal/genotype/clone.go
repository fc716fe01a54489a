package genotype

import "dinoevo/internal/model"

// CloneBrain deep-copies a brain so the copy shares no slices with the source.
func CloneBrain(b model.Brain) model.Brain {
	out := model.Brain{Webs: make([]model.NeuroneWeb, len(b.Webs))}
	for i, web := range b.Webs {
		out.Webs[i] = model.NeuroneWeb{
			Action:   web.Action,
			Neurones: append([]model.Neurone(nil), web.Neurones...),
		}
	}
	return out
}

func ClonePopulation(brains []model.Brain) []model.Brain {
	out := make([]model.Brain, len(brains))
	for i, b := range brains {
		out[i] = CloneBrain(b)
	}
	return out
}
