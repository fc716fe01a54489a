package scape

import (
	"context"
	"fmt"
	"time"

	"github.com/jdeal-mediamath/clockwork"

	"dinoevo/internal/config"
)

const ctxCheckEvery = 1024

// RunnerScape evaluates an agent by running one game to a terminal state on
// a fake clock advanced by one frame per tick.
type RunnerScape struct {
	Config   config.Config
	LandSeed string
}

func (RunnerScape) Name() string {
	return "dino-runner"
}

func (s RunnerScape) Evaluate(ctx context.Context, agent Agent) (Fitness, Trace, error) {
	if s.Config.GameFPS <= 0 {
		return 0, nil, fmt.Errorf("game_fps must be > 0")
	}
	if s.Config.MaxScore == 0 {
		return 0, nil, fmt.Errorf("max_score must be > 0")
	}
	game, err := Simulate(ctx, s.Config, s.LandSeed, agent, nil)
	if err != nil {
		return 0, nil, err
	}
	return Fitness(game.Score()), Trace{
		"ticks":      game.Ticks(),
		"spawned":    game.Spawned(),
		"lost":       game.Lost(),
		"elapsed_ms": game.Elapsed().Milliseconds(),
		"land_seed":  s.LandSeed,
	}, nil
}

// Simulate runs a game to a terminal state on a fake clock advanced by one
// frame per tick. onFrame, when set, observes every tick.
func Simulate(ctx context.Context, cfg config.Config, landSeed string, agent Agent, onFrame func(Frame)) (*Game, error) {
	if cfg.GameFPS <= 0 {
		return nil, fmt.Errorf("game_fps must be > 0")
	}
	clock := clockwork.NewFakeClock()
	game := NewGame(cfg, clock.Now(), landSeed, agent)
	tick := time.Second / time.Duration(cfg.GameFPS)

	for !game.Terminal() {
		if game.Ticks()%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return game, err
			}
		}
		clock.Advance(tick)
		if err := game.Update(clock.Now()); err != nil {
			return game, err
		}
		if onFrame != nil {
			onFrame(game.Frame())
		}
	}
	return game, nil
}

// Play drives a game in wall-clock time, calling onFrame after every tick,
// until it is terminal or ctx is done.
func Play(ctx context.Context, cfg config.Config, landSeed string, agent Agent, clock clockwork.Clock, onFrame func(Frame)) (*Game, error) {
	if cfg.GameFPS <= 0 {
		return nil, fmt.Errorf("game_fps must be > 0")
	}
	game := NewGame(cfg, clock.Now(), landSeed, agent)
	tick := time.Second / time.Duration(cfg.GameFPS)
	for !game.Terminal() {
		select {
		case <-ctx.Done():
			return game, ctx.Err()
		case <-clock.After(tick):
		}
		if err := game.Update(clock.Now()); err != nil {
			return game, err
		}
		if onFrame != nil {
			onFrame(game.Frame())
		}
	}
	return game, nil
}
