package scape

import "dinoevo/internal/model"

type ObstacleFrame struct {
	Kind ObstacleKind `json:"kind"`
	Box  model.Rect   `json:"box"`
}

// Frame is the read-only view a renderer draws.
type Frame struct {
	Tick      int             `json:"tick"`
	ElapsedMS int64           `json:"elapsed_ms"`
	LandSeed  string          `json:"land_seed"`
	Dinosaur  model.Rect      `json:"dinosaur"`
	Bending   bool            `json:"bending"`
	Obstacles []ObstacleFrame `json:"obstacles"`
	Score     uint64          `json:"score"`
	Lost      bool            `json:"lost"`
	Actions   model.ActionSet `json:"actions"`
	Brain     *model.Brain    `json:"brain,omitempty"`
}

// BrainCarrier is implemented by agents that can expose their brain to renderers.
type BrainCarrier interface {
	Brain() model.Brain
}

func (g *Game) Frame() Frame {
	obstacles := make([]ObstacleFrame, len(g.obstacles))
	for i, o := range g.obstacles {
		obstacles[i] = ObstacleFrame{Kind: o.Kind, Box: o.Box}
	}
	f := Frame{
		Tick:      g.ticks,
		ElapsedMS: g.Elapsed().Milliseconds(),
		LandSeed:  g.landSeed,
		Dinosaur:  g.dino.Box,
		Bending:   g.dino.Bending,
		Obstacles: obstacles,
		Score:     g.score,
		Lost:      g.lost,
		Actions:   g.actions,
	}
	if carrier, ok := g.agent.(BrainCarrier); ok {
		b := carrier.Brain()
		f.Brain = &b
	}
	return f
}
