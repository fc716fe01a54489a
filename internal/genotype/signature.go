package genotype

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"dinoevo/internal/model"
)

type TopologySummary struct {
	TotalWebs          int            `json:"total_webs"`
	TotalNeurones      int            `json:"total_neurones"`
	TotalVetoes        int            `json:"total_vetoes"`
	TotalCollide       int            `json:"total_collide"`
	ActionDistribution map[string]int `json:"action_distribution"`
}

type BrainSignature struct {
	Fingerprint string          `json:"fingerprint"`
	Summary     TopologySummary `json:"summary"`
}

// ComputeBrainSignature hashes the brain's structure and sensor placement.
// Positions are rounded to hundredths so float noise does not split identical brains.
func ComputeBrainSignature(brain model.Brain) BrainSignature {
	actions := make(map[string]int)
	summary := TopologySummary{TotalWebs: len(brain.Webs), ActionDistribution: actions}

	parts := make([]string, 0, 1+len(brain.Webs))
	parts = append(parts, fmt.Sprintf("w=%d", len(brain.Webs)))
	for _, web := range brain.Webs {
		actions[string(web.Action)]++
		var b strings.Builder
		b.WriteString(string(web.Action))
		for _, n := range web.Neurones {
			summary.TotalNeurones++
			if n.Polarity == model.PolarityVeto {
				summary.TotalVetoes++
			}
			if n.Condition == model.ConditionCollide {
				summary.TotalCollide++
			}
			fmt.Fprintf(&b, ";%.2f,%.2f,%.2f,%.2f,%s,%s", n.X, n.Y, n.Width, n.Height, n.Condition, n.Polarity)
		}
		parts = append(parts, b.String())
	}
	// webs are unordered, so sort their encodings before hashing.
	sort.Strings(parts[1:])

	digest := sha1.Sum([]byte(strings.Join(parts, "|")))
	return BrainSignature{
		Fingerprint: hex.EncodeToString(digest[:8]),
		Summary:     summary,
	}
}

// Diversity counts distinct fingerprints in a population.
func Diversity(brains []model.Brain) int {
	seen := make(map[string]struct{}, len(brains))
	for _, b := range brains {
		seen[ComputeBrainSignature(b).Fingerprint] = struct{}{}
	}
	return len(seen)
}
