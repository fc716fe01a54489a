package scape

import (
	"time"

	"dinoevo/internal/config"
	"dinoevo/internal/model"
)

type Dinosaur struct {
	Box        model.Rect
	Velocity   float64
	Bending    bool
	lastUpdate time.Time
}

func newDinosaur(cfg config.Config, now time.Time) Dinosaur {
	return Dinosaur{
		Box:        model.Rect{X: cfg.DinosaurX, Y: 0, W: cfg.DinosaurWidth, H: cfg.DinosaurHeight},
		lastUpdate: now,
	}
}

func (d *Dinosaur) Grounded() bool {
	return d.Box.Y == 0 && d.Velocity == 0
}

func (d *Dinosaur) update(cfg config.Config, now time.Time) {
	if now.Before(d.lastUpdate) {
		return
	}
	dt := now.Sub(d.lastUpdate).Seconds()
	d.Box.Y += d.Velocity * dt
	d.Velocity -= cfg.Gravity * dt
	if d.Box.Y <= 0 {
		d.Box.Y = 0
		d.Velocity = 0
	}
	d.lastUpdate = now
}

func (d *Dinosaur) jump(cfg config.Config) bool {
	if !d.Grounded() || d.Bending {
		return false
	}
	d.Velocity = cfg.DinosaurJumpVelocity
	return true
}

func (d *Dinosaur) bend() bool {
	if !d.Grounded() || d.Bending {
		return false
	}
	d.Bending = true
	d.Box.W, d.Box.H = d.Box.H, d.Box.W
	return true
}

func (d *Dinosaur) unbend() bool {
	if !d.Bending {
		return false
	}
	d.Bending = false
	d.Box.W, d.Box.H = d.Box.H, d.Box.W
	return true
}

type ObstacleKind string

const (
	KindCactus              ObstacleKind = "cactus"
	KindRock                ObstacleKind = "rock"
	KindPterodactyl         ObstacleKind = "pterodactyl"
	KindPterodactylWithRock ObstacleKind = "pterodactyl_with_rock"
	KindHole                ObstacleKind = "hole"
)

type Obstacle struct {
	Kind       ObstacleKind
	Box        model.Rect
	Velocity   float64
	lastUpdate time.Time
}

// update moves the obstacle left; a clock earlier than its last update freezes it.
func (o *Obstacle) update(now time.Time) {
	if now.Before(o.lastUpdate) {
		return
	}
	o.Box.X -= o.Velocity * now.Sub(o.lastUpdate).Seconds()
	o.lastUpdate = now
}

func (o *Obstacle) exited() bool {
	return o.Box.X+o.Box.W < 0
}

// Archetype is a spawn pattern; some push two obstacles at once.
type Archetype string

const (
	ArchetypeCactus             Archetype = "cactus"
	ArchetypeRock               Archetype = "rock"
	ArchetypeRockAndPterodactyl Archetype = "rock_and_pterodactyl"
	ArchetypeRockAndHole        Archetype = "rock_and_hole"
	ArchetypePterodactyl        Archetype = "pterodactyl"
)

// EnabledArchetypes lists, in a fixed order, the archetypes the configured
// action set can deal with.
func EnabledArchetypes(cfg config.Config) []Archetype {
	out := make([]Archetype, 0, 5)
	if cfg.GroundHazardsEnabled() {
		out = append(out, ArchetypeCactus, ArchetypeRock, ArchetypeRockAndPterodactyl, ArchetypeRockAndHole)
	}
	if cfg.FlyerEnabled() {
		out = append(out, ArchetypePterodactyl)
	}
	return out
}

func spawn(cfg config.Config, kind Archetype, x, speed float64, now time.Time) []Obstacle {
	mk := func(k ObstacleKind, box model.Rect) Obstacle {
		return Obstacle{Kind: k, Box: box, Velocity: speed, lastUpdate: now}
	}
	rock := mk(KindRock, model.Rect{X: x, Y: 0, W: cfg.RockWidth, H: cfg.RockHeight})
	switch kind {
	case ArchetypeCactus:
		return []Obstacle{mk(KindCactus, model.Rect{X: x, Y: 0, W: cfg.CactusWidth, H: cfg.CactusHeight})}
	case ArchetypeRock:
		return []Obstacle{rock}
	case ArchetypeRockAndPterodactyl:
		return []Obstacle{rock, mk(KindPterodactylWithRock, model.Rect{
			X: x + cfg.PterodactylOffsetWithRock, Y: cfg.PterodactylWithRockHeight,
			W: cfg.PterodactylWidth, H: cfg.PterodactylHeight,
		})}
	case ArchetypeRockAndHole:
		return []Obstacle{rock, mk(KindHole, model.Rect{X: x + cfg.RockWidth, Y: 0, W: cfg.HoleWidth, H: cfg.HoleHeight})}
	case ArchetypePterodactyl:
		return []Obstacle{mk(KindPterodactyl, model.Rect{
			X: x, Y: cfg.PterodactylFlyHeight,
			W: cfg.PterodactylWidth, H: cfg.PterodactylHeight,
		})}
	default:
		return nil
	}
}
