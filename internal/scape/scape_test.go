package scape

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"dinoevo/internal/config"
	"dinoevo/internal/model"
)

type fixedAgent struct {
	set model.ActionSet
}

func (fixedAgent) ID() string { return "fixed" }

func (a fixedAgent) Decide([]model.Rect) model.ActionSet { return a.set }

func TestScaleStaircaseValues(t *testing.T) {
	cases := []struct {
		score uint64
		want  float64
	}{
		{0, 2}, {9, 2}, {10, 4}, {150, 10},
	}
	for _, tc := range cases {
		if got := Scale(10, 2, 2, tc.score, 10, false); got != tc.want {
			t.Fatalf("Scale(score=%d)=%g want %g", tc.score, got, tc.want)
		}
	}
	if got := Scale(10, 2, 2, 0, 10, true); got != 10 {
		t.Fatalf("reverse at 0: got %g", got)
	}
	if got := Scale(10, 2, 2, 1000, 10, true); got != 2 {
		t.Fatalf("reverse saturates at min: got %g", got)
	}
}

func TestScaleIsMonotonicAndBounded(t *testing.T) {
	prevUp, prevDown := Scale(10, 2, 0.7, 0, 3, false), Scale(10, 2, 0.7, 0, 3, true)
	for score := uint64(1); score < 500; score++ {
		up := Scale(10, 2, 0.7, score, 3, false)
		down := Scale(10, 2, 0.7, score, 3, true)
		if up < prevUp || up > 10 || up < 2 {
			t.Fatalf("forward staircase broke at %d: %g after %g", score, up, prevUp)
		}
		if down > prevDown || down < 2 || down > 10 {
			t.Fatalf("reverse staircase broke at %d: %g after %g", score, down, prevDown)
		}
		prevUp, prevDown = up, down
	}
}

func TestIdleDinosaurEventuallyLoses(t *testing.T) {
	cfg := config.Default()
	fitness, trace, err := RunnerScape{Config: cfg, LandSeed: "idle"}.Evaluate(context.Background(), fixedAgent{})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if lost, _ := trace["lost"].(bool); !lost {
		t.Fatalf("expected idle dinosaur to lose, trace=%v", trace)
	}
	if uint64(fitness) >= cfg.MaxScore {
		t.Fatalf("idle dinosaur reached the ceiling: %d", fitness)
	}
}

func TestBendingClearsLonePterodactyls(t *testing.T) {
	cfg := config.Default()
	cfg.Actions = []model.Action{model.ActionBend, model.ActionUnbend}
	cfg.MaxScore = 5
	fitness, trace, err := RunnerScape{Config: cfg, LandSeed: "flyers"}.Evaluate(context.Background(), fixedAgent{set: model.NewActionSet(model.ActionBend)})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if uint64(fitness) != cfg.MaxScore {
		t.Fatalf("expected ceiling %d, got %d (trace=%v)", cfg.MaxScore, fitness, trace)
	}
	if lost, _ := trace["lost"].(bool); lost {
		t.Fatal("bending dinosaur should never collide with a lone pterodactyl")
	}
}

func TestSameLandSeedSameObstacles(t *testing.T) {
	cfg := config.Default()
	start := time.Unix(0, 0)
	a := NewGame(cfg, start, "terrain", nil)
	b := NewGame(cfg, start, "terrain", nil)
	tick := time.Second / time.Duration(cfg.GameFPS)
	now := start
	for i := 0; i < 300; i++ {
		now = now.Add(tick)
		if err := a.Update(now); err != nil {
			t.Fatalf("update a: %v", err)
		}
		if err := b.Update(now); err != nil {
			t.Fatalf("update b: %v", err)
		}
		if !reflect.DeepEqual(a.Frame(), b.Frame()) {
			t.Fatalf("games diverged at tick %d", i)
		}
	}
	if a.Spawned() == 0 {
		t.Fatal("expected spawns within five seconds")
	}
}

func TestEnabledArchetypesFollowActions(t *testing.T) {
	cfg := config.Default()
	cfg.Actions = []model.Action{model.ActionJump}
	got := EnabledArchetypes(cfg)
	if len(got) != 4 {
		t.Fatalf("expected ground archetypes only, got %v", got)
	}
	for _, a := range got {
		if a == ArchetypePterodactyl {
			t.Fatal("lone pterodactyl must need bend and unbend")
		}
	}
	cfg.Actions = []model.Action{model.ActionBend, model.ActionUnbend}
	got = EnabledArchetypes(cfg)
	if len(got) != 1 || got[0] != ArchetypePterodactyl {
		t.Fatalf("expected lone pterodactyl only, got %v", got)
	}
}

func TestDinosaurJumpAndBendRules(t *testing.T) {
	cfg := config.Default()
	start := time.Unix(0, 0)
	g := NewGame(cfg, start, "rules", nil)

	if !g.Apply(model.ActionJump) {
		t.Fatal("expected grounded jump to succeed")
	}
	if g.Apply(model.ActionJump) {
		t.Fatal("second jump while airborne must fail")
	}
	g.dino.update(cfg, start.Add(100*time.Millisecond))
	if g.dino.Box.Y <= 0 {
		t.Fatalf("expected dinosaur in the air, y=%g", g.dino.Box.Y)
	}
	if g.Apply(model.ActionBend) {
		t.Fatal("bend while airborne must fail")
	}
	tick := time.Second / time.Duration(cfg.GameFPS)
	for now := start.Add(100 * time.Millisecond); now.Before(start.Add(2 * time.Second)); now = now.Add(tick) {
		g.dino.update(cfg, now)
	}
	if !g.dino.Grounded() {
		t.Fatalf("expected landing, dino=%+v", g.dino)
	}

	if !g.Apply(model.ActionBend) {
		t.Fatal("expected grounded bend to succeed")
	}
	if g.dino.Box.W != cfg.DinosaurHeight || g.dino.Box.H != cfg.DinosaurWidth {
		t.Fatalf("bend should swap width and height: %+v", g.dino.Box)
	}
	if g.Apply(model.ActionJump) {
		t.Fatal("jump while bending must fail")
	}
	if !g.Apply(model.ActionUnbend) || g.dino.Box.H != cfg.DinosaurHeight {
		t.Fatalf("unbend should restore size: %+v", g.dino.Box)
	}
	if g.Apply(model.ActionUnbend) {
		t.Fatal("unbend while standing must fail")
	}
}

func TestObstacleFreezesOnClockRegression(t *testing.T) {
	now := time.Unix(100, 0)
	o := Obstacle{Box: model.Rect{X: 500, W: 10, H: 10}, Velocity: 100, lastUpdate: now}
	o.update(now.Add(-time.Second))
	if o.Box.X != 500 {
		t.Fatalf("obstacle moved on regressed clock: x=%g", o.Box.X)
	}
	o.update(now.Add(time.Second))
	if o.Box.X != 400 {
		t.Fatalf("expected x=400 after one second, got %g", o.Box.X)
	}
}

func TestCollisionEndsGame(t *testing.T) {
	cfg := config.Default()
	start := time.Unix(0, 0)
	g := NewGame(cfg, start, "hit", nil)
	g.obstacles = append(g.obstacles, Obstacle{Kind: KindCactus, Box: model.Rect{X: cfg.DinosaurX + 5, W: 10, H: 10}, lastUpdate: start})
	if err := g.Update(start.Add(time.Millisecond)); err != nil {
		t.Fatalf("update: %v", err)
	}
	if !g.Lost() || !g.Terminal() {
		t.Fatal("expected overlap to end the game")
	}
	if g.Apply(model.ActionJump) {
		t.Fatal("actions must be ignored after a loss")
	}
}

func TestSimultaneousExitsStopAtCeiling(t *testing.T) {
	cfg := config.Default()
	cfg.MaxScore = 3
	start := time.Unix(0, 0)
	g := NewGame(cfg, start, "exits", nil)
	g.score = 2
	g.nextSpawn = start.Add(time.Hour)
	for i := 0; i < 2; i++ {
		g.obstacles = append(g.obstacles, Obstacle{Kind: KindCactus, Box: model.Rect{X: -50, W: 10, H: 10}, lastUpdate: start})
	}
	if err := g.Update(start.Add(time.Millisecond)); err != nil {
		t.Fatalf("update: %v", err)
	}
	if g.Score() != cfg.MaxScore {
		t.Fatalf("expected score capped at %d, got %d", cfg.MaxScore, g.Score())
	}
	if !g.Terminal() || g.Lost() {
		t.Fatal("expected the ceiling to end the game without a loss")
	}
	if len(g.Obstacles()) != 0 {
		t.Fatalf("expected both exited obstacles removed, %d left", len(g.Obstacles()))
	}
}

func TestSpawnIntervalOverflowIsFatal(t *testing.T) {
	cfg := config.Default()
	cfg.MaxObstacleGenerationTime = 1e12
	_, _, err := RunnerScape{Config: cfg, LandSeed: "overflow"}.Evaluate(context.Background(), fixedAgent{})
	if !errors.Is(err, ErrClockOverflow) {
		t.Fatalf("expected ErrClockOverflow, got %v", err)
	}
}

func TestFrameExposesBrainCarrier(t *testing.T) {
	cfg := config.Default()
	g := NewGame(cfg, time.Unix(0, 0), "frame", brainAgent{})
	f := g.Frame()
	if f.Brain == nil || len(f.Brain.Webs) != 1 {
		t.Fatalf("expected frame to carry brain, got %+v", f.Brain)
	}
	if f.Dinosaur.H != cfg.DinosaurHeight {
		t.Fatalf("unexpected dinosaur box: %+v", f.Dinosaur)
	}
}

type brainAgent struct{}

func (brainAgent) ID() string                          { return "brain" }
func (brainAgent) Decide([]model.Rect) model.ActionSet { return 0 }
func (brainAgent) Brain() model.Brain {
	return model.Brain{Webs: []model.NeuroneWeb{{Action: model.ActionJump}}}
}

func TestSimulateReportsEveryFrame(t *testing.T) {
	cfg := config.Default()
	var frames []Frame
	game, err := Simulate(context.Background(), cfg, "frames", fixedAgent{}, func(f Frame) {
		frames = append(frames, f)
	})
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if len(frames) != game.Ticks() {
		t.Fatalf("expected %d frames, got %d", game.Ticks(), len(frames))
	}
	last := frames[len(frames)-1]
	if last.Score != game.Score() || last.Lost != game.Lost() {
		t.Fatalf("last frame %+v does not match game score=%d lost=%t", last, game.Score(), game.Lost())
	}
	for i := 1; i < len(frames); i++ {
		if frames[i].Tick <= frames[i-1].Tick {
			t.Fatalf("frame ticks not increasing at %d", i)
		}
	}
}

func TestSimulateStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Simulate(ctx, config.Default(), "cancel", fixedAgent{}, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
