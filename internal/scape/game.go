package scape

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"dinoevo/internal/config"
	"dinoevo/internal/model"
)

// Game is one simulation: a dinosaur, its obstacles and the score. It is
// advanced by Update on an external tick and owns its terrain RNG.
type Game struct {
	cfg       config.Config
	agent     Agent
	landSeed  string
	archetype []Archetype
	rng       *rand.Rand

	dino      Dinosaur
	obstacles []Obstacle
	score     uint64
	lost      bool
	spawned   int
	ticks     int

	start      time.Time
	lastUpdate time.Time
	nextSpawn  time.Time
	actions    model.ActionSet
}

// NewGame starts a game at start with a terrain stream seeded from landSeed.
// agent may be nil, in which case only Apply moves the dinosaur.
func NewGame(cfg config.Config, start time.Time, landSeed string, agent Agent) *Game {
	return &Game{
		cfg:        cfg,
		agent:      agent,
		landSeed:   landSeed,
		archetype:  EnabledArchetypes(cfg),
		rng:        rand.New(rand.NewChaCha8(config.SeedBytes(landSeed))),
		dino:       newDinosaur(cfg, start),
		start:      start,
		lastUpdate: start,
		nextSpawn:  start,
	}
}

// Update advances the game to now. It is a no-op once the game is terminal.
func (g *Game) Update(now time.Time) error {
	if g.Terminal() {
		return nil
	}
	g.ticks++
	g.dino.update(g.cfg, now)
	for i := range g.obstacles {
		g.obstacles[i].update(now)
	}

	for _, o := range g.obstacles {
		if g.dino.Box.Overlaps(o.Box) {
			g.lost = true
			g.lastUpdate = now
			return nil
		}
	}

	if !now.Before(g.nextSpawn) {
		if err := g.spawnNext(); err != nil {
			return err
		}
	}

	g.actions = 0
	if g.agent != nil {
		g.actions = g.agent.Decide(g.Boxes())
		g.ApplySet(g.actions)
	}

	kept := g.obstacles[:0]
	for _, o := range g.obstacles {
		if o.exited() {
			if g.score < g.cfg.MaxScore {
				g.score++
			}
			continue
		}
		kept = append(kept, o)
	}
	g.obstacles = kept
	g.lastUpdate = now
	return nil
}

func (g *Game) spawnNext() error {
	interval := Scale(
		g.cfg.MaxObstacleGenerationTime,
		g.cfg.MinObstacleGenerationTime,
		g.cfg.ObstacleGenerationTimeDecreaseSpeed,
		g.score,
		g.cfg.ScoreIncreaseSpeedInterval,
		true,
	)
	next, err := addSeconds(g.nextSpawn, interval)
	if err != nil {
		return err
	}
	speed := Scale(
		g.cfg.MaxObstacleSpeed,
		g.cfg.MinObstacleSpeed,
		g.cfg.ObstacleIncreaseSpeedStep,
		g.score,
		g.cfg.ScoreIncreaseObstacleSpeedInterval,
		false,
	)
	kind := g.archetype[g.rng.IntN(len(g.archetype))]
	// obstacles start moving from their scheduled spawn time.
	batch := spawn(g.cfg, kind, g.cfg.GameWidth, speed, g.nextSpawn)
	g.obstacles = append(g.obstacles, batch...)
	g.spawned += len(batch)
	g.nextSpawn = next
	return nil
}

// addSeconds adds a positive number of seconds to t and fails instead of
// wrapping when the result cannot be represented.
func addSeconds(t time.Time, seconds float64) (time.Time, error) {
	if math.IsNaN(seconds) || seconds < 0 {
		return time.Time{}, fmt.Errorf("%w: invalid interval %v", ErrClockOverflow, seconds)
	}
	ns := seconds * float64(time.Second)
	if ns >= math.MaxInt64 {
		return time.Time{}, fmt.Errorf("%w: interval %gs", ErrClockOverflow, seconds)
	}
	d := time.Duration(ns)
	next := t.Add(d)
	if d > 0 && !next.After(t) {
		return time.Time{}, fmt.Errorf("%w: %s + %s", ErrClockOverflow, t, d)
	}
	return next, nil
}

// Apply performs one externally sourced action; it is ignored after a loss.
func (g *Game) Apply(a model.Action) bool {
	if g.lost {
		return false
	}
	switch a {
	case model.ActionJump:
		return g.dino.jump(g.cfg)
	case model.ActionBend:
		return g.dino.bend()
	case model.ActionUnbend:
		return g.dino.unbend()
	default:
		return false
	}
}

// ApplySet applies each member of the set once, in Jump, Bend, Unbend order.
func (g *Game) ApplySet(set model.ActionSet) {
	for _, a := range set.Actions() {
		g.Apply(a)
	}
}

// Boxes returns the obstacle hitboxes handed to agents.
func (g *Game) Boxes() []model.Rect {
	out := make([]model.Rect, len(g.obstacles))
	for i, o := range g.obstacles {
		out[i] = o.Box
	}
	return out
}

func (g *Game) Terminal() bool {
	return g.lost || g.score >= g.cfg.MaxScore
}

func (g *Game) Score() uint64 { return g.score }

func (g *Game) Lost() bool { return g.lost }

func (g *Game) Ticks() int { return g.ticks }

func (g *Game) Spawned() int { return g.spawned }

func (g *Game) Dinosaur() Dinosaur { return g.dino }

func (g *Game) Obstacles() []Obstacle {
	return append([]Obstacle(nil), g.obstacles...)
}

func (g *Game) Elapsed() time.Duration {
	return g.lastUpdate.Sub(g.start)
}
