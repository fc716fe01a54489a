package dinoevo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/jdeal-mediamath/clockwork"

	"dinoevo/internal/agent"
	"dinoevo/internal/config"
	"dinoevo/internal/evo"
	"dinoevo/internal/feed"
	"dinoevo/internal/genotype"
	"dinoevo/internal/model"
	"dinoevo/internal/nn"
	"dinoevo/internal/scape"
	"dinoevo/internal/stats"
	"dinoevo/internal/storage"
)

const defaultRunDir = "run"

// ErrNoCheckpoint is returned when a run folder holds no checkpoint yet.
var ErrNoCheckpoint = errors.New("no checkpoint found")

type Options struct {
	StoreKind string
	RunDir    string
}

// Client operates on one run folder.
type Client struct {
	store  storage.Store
	runDir string
}

type TrainRequest struct {
	Config      config.Config
	Generations int
	Workers     int
	Reporter    evo.Reporter
	SampleCPU   bool
}

type TrainSummary struct {
	RunID           string
	Resumed         bool
	FirstGeneration int
	LastGeneration  int
	BestScore       uint64
	Survivors       int
	BestFingerprint string
}

// CheckpointRequest selects a checkpoint by generation, or the latest one.
type CheckpointRequest struct {
	Generation int
	Latest     bool
}

type BrainReport struct {
	Index     int
	Signature genotype.BrainSignature
	Energy    float64
}

type CheckpointReport struct {
	Generation int
	Score      uint64
	LandSeed   string
	Brains     []BrainReport
	Checkpoint model.Checkpoint
}

type ReplayRequest struct {
	Checkpoint CheckpointRequest
	BrainIndex int
	// LandSeed overrides the checkpoint's terrain when set.
	LandSeed string
	OnFrame  func(scape.Frame)
}

type ReplayResult struct {
	Generation int
	BrainIndex int
	LandSeed   string
	Score      uint64
	Lost       bool
	Ticks      int
	Elapsed    time.Duration
}

type WatchRequest struct {
	Addr       string
	Checkpoint CheckpointRequest
	BrainIndex int
	// Manual lets connected renderers drive the dinosaur instead of a brain.
	Manual  bool
	Clock   clockwork.Clock
	LogOut  io.Writer
	OnReady func(*feed.Server)
}

func New(opts Options) (*Client, error) {
	runDir := opts.RunDir
	if runDir == "" {
		runDir = defaultRunDir
	}
	store, err := storage.NewStore(opts.StoreKind, runDir)
	if err != nil {
		return nil, err
	}
	return &Client{store: store, runDir: runDir}, nil
}

// NewWithStore wraps an already opened store.
func NewWithStore(store storage.Store) *Client {
	return &Client{store: store}
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) RunDir() string {
	return c.runDir
}

// Train starts a fresh run or resumes the run folder's latest checkpoint.
func (c *Client) Train(ctx context.Context, req TrainRequest) (TrainSummary, error) {
	if req.Generations <= 0 {
		req.Generations = 1
	}
	if req.Workers <= 0 {
		req.Workers = 4
	}
	monitorCfg := evo.MonitorConfig{
		Config:      req.Config,
		Store:       c.store,
		Generations: req.Generations,
		Workers:     req.Workers,
		Reporter:    req.Reporter,
	}
	if req.SampleCPU {
		monitorCfg.CPUSampler = stats.SampleCPUPercent
	}
	monitor, err := evo.NewPopulationMonitor(monitorCfg)
	if err != nil {
		return TrainSummary{}, err
	}
	result, err := monitor.Run(ctx)
	if err != nil {
		return TrainSummary{}, err
	}
	summary := TrainSummary{
		RunID:           result.RunID,
		Resumed:         result.Resumed,
		FirstGeneration: result.FirstGeneration,
		LastGeneration:  result.LastGeneration,
		BestScore:       result.BestScore,
		Survivors:       len(result.Survivors),
	}
	if len(result.Survivors) > 0 {
		summary.BestFingerprint = genotype.ComputeBrainSignature(result.Survivors[0].Brain).Fingerprint
	}
	return summary, nil
}

func (c *Client) Params(ctx context.Context) (config.Config, error) {
	if err := c.store.Init(ctx); err != nil {
		return config.Config{}, err
	}
	cfg, ok, err := c.store.GetParams(ctx)
	if err != nil {
		return config.Config{}, err
	}
	if !ok {
		return config.Config{}, fmt.Errorf("run folder has no params")
	}
	return cfg, nil
}

func (c *Client) RunInfo(ctx context.Context) (model.RunInfo, error) {
	if err := c.store.Init(ctx); err != nil {
		return model.RunInfo{}, err
	}
	info, ok, err := c.store.GetRunInfo(ctx)
	if err != nil {
		return model.RunInfo{}, err
	}
	if !ok {
		return model.RunInfo{}, fmt.Errorf("run folder has no run info")
	}
	return info, nil
}

// History returns the stored diagnostics; limit > 0 keeps only the most
// recent generations.
func (c *Client) History(ctx context.Context, limit int) ([]model.GenerationDiagnostics, error) {
	if err := c.store.Init(ctx); err != nil {
		return nil, err
	}
	history, _, err := c.store.GetGenerationDiagnostics(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	return history, nil
}

func (c *Client) ExportHistoryCSV(ctx context.Context, w io.Writer) error {
	history, err := c.History(ctx, 0)
	if err != nil {
		return err
	}
	return stats.WriteHistoryCSV(w, history)
}

func (c *Client) Plot(ctx context.Context, outPath, title string) error {
	history, err := c.History(ctx, 0)
	if err != nil {
		return err
	}
	if title == "" {
		if info, err := c.RunInfo(ctx); err == nil {
			title = info.ID
		}
	}
	return stats.PlotHistory(history, title, outPath)
}

// Checkpoints lists the stored generation indexes in ascending order.
func (c *Client) Checkpoints(ctx context.Context) ([]int, error) {
	if err := c.store.Init(ctx); err != nil {
		return nil, err
	}
	generations, err := c.store.ListCheckpoints(ctx)
	if err != nil {
		return nil, err
	}
	sort.Ints(generations)
	return generations, nil
}

func (c *Client) Inspect(ctx context.Context, req CheckpointRequest) (CheckpointReport, error) {
	cfg, err := c.Params(ctx)
	if err != nil {
		return CheckpointReport{}, err
	}
	gen, cp, err := c.checkpoint(ctx, req)
	if err != nil {
		return CheckpointReport{}, err
	}
	report := CheckpointReport{
		Generation: gen,
		Score:      cp.Score,
		LandSeed:   cp.LandSeed,
		Checkpoint: cp,
		Brains:     make([]BrainReport, len(cp.Brains)),
	}
	for i, b := range cp.Brains {
		report.Brains[i] = BrainReport{
			Index:     i,
			Signature: genotype.ComputeBrainSignature(b),
			Energy:    nn.BrainEnergy(cfg, b),
		}
	}
	return report, nil
}

// Replay reruns one stored brain headlessly on the simulated clock.
func (c *Client) Replay(ctx context.Context, req ReplayRequest) (ReplayResult, error) {
	cfg, err := c.Params(ctx)
	if err != nil {
		return ReplayResult{}, err
	}
	gen, cp, err := c.checkpoint(ctx, req.Checkpoint)
	if err != nil {
		return ReplayResult{}, err
	}
	brain, err := pickBrain(cp, req.BrainIndex)
	if err != nil {
		return ReplayResult{}, err
	}
	landSeed := replaySeed(cfg, cp, req.LandSeed)
	game, err := scape.Simulate(ctx, cfg, landSeed, agent.NewBrainAgent(fmt.Sprintf("replay-%d", req.BrainIndex), brain), req.OnFrame)
	if err != nil {
		return ReplayResult{}, err
	}
	return ReplayResult{
		Generation: gen,
		BrainIndex: req.BrainIndex,
		LandSeed:   landSeed,
		Score:      game.Score(),
		Lost:       game.Lost(),
		Ticks:      game.Ticks(),
		Elapsed:    game.Elapsed(),
	}, nil
}

// Watch serves a wall-clock game over the websocket feed until the game is
// terminal or ctx is done.
func (c *Client) Watch(ctx context.Context, req WatchRequest) (ReplayResult, error) {
	cfg, err := c.Params(ctx)
	if err != nil {
		return ReplayResult{}, err
	}
	if req.Clock == nil {
		req.Clock = clockwork.NewRealClock()
	}
	if req.Addr == "" {
		req.Addr = ":9001"
	}

	var (
		player   scape.Agent
		sink     feed.ActionSink
		gen      int
		landSeed = cfg.LandSeed
	)
	if req.Manual {
		manual := agent.NewManualAgent("player")
		player, sink = manual, manual
	} else {
		var cp model.Checkpoint
		gen, cp, err = c.checkpoint(ctx, req.Checkpoint)
		if err != nil {
			return ReplayResult{}, err
		}
		brain, err := pickBrain(cp, req.BrainIndex)
		if err != nil {
			return ReplayResult{}, err
		}
		landSeed = replaySeed(cfg, cp, "")
		player = agent.NewBrainAgent(fmt.Sprintf("watch-%d", req.BrainIndex), brain)
	}

	server := feed.NewServer(cfg, sink, req.LogOut)
	playCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The error is sent before cancel so Play's return observes it.
	listenErr := make(chan error, 1)
	go func() {
		if err := server.Listen(req.Addr); err != nil {
			listenErr <- err
			cancel()
		}
	}()
	defer func() {
		_ = server.Shutdown()
	}()
	if req.OnReady != nil {
		req.OnReady(server)
	}

	game, err := scape.Play(playCtx, cfg, landSeed, player, req.Clock, func(f scape.Frame) {
		_ = server.Broadcast(f)
	})
	select {
	case lerr := <-listenErr:
		return ReplayResult{}, fmt.Errorf("feed listen %s: %w", req.Addr, lerr)
	default:
	}
	if game == nil || (err != nil && !errors.Is(err, context.Canceled)) {
		return ReplayResult{}, err
	}
	return ReplayResult{
		Generation: gen,
		BrainIndex: req.BrainIndex,
		LandSeed:   landSeed,
		Score:      game.Score(),
		Lost:       game.Lost(),
		Ticks:      game.Ticks(),
		Elapsed:    game.Elapsed(),
	}, err
}

func (c *Client) checkpoint(ctx context.Context, req CheckpointRequest) (int, model.Checkpoint, error) {
	if err := c.store.Init(ctx); err != nil {
		return 0, model.Checkpoint{}, err
	}
	if req.Latest {
		gen, cp, ok, err := storage.LatestCheckpoint(ctx, c.store)
		if err != nil {
			return 0, model.Checkpoint{}, err
		}
		if !ok {
			return 0, model.Checkpoint{}, ErrNoCheckpoint
		}
		return gen, cp, nil
	}
	cp, ok, err := c.store.GetCheckpoint(ctx, req.Generation)
	if err != nil {
		return 0, model.Checkpoint{}, err
	}
	if !ok {
		return 0, model.Checkpoint{}, fmt.Errorf("%w: generation %d", ErrNoCheckpoint, req.Generation)
	}
	return req.Generation, cp, nil
}

func pickBrain(cp model.Checkpoint, index int) (model.Brain, error) {
	if index < 0 || index >= len(cp.Brains) {
		return model.Brain{}, fmt.Errorf("brain index %d out of range [0, %d)", index, len(cp.Brains))
	}
	return cp.Brains[index], nil
}

func replaySeed(cfg config.Config, cp model.Checkpoint, override string) string {
	switch {
	case override != "":
		return override
	case cp.LandSeed != "":
		return cp.LandSeed
	default:
		return cfg.LandSeed
	}
}
