package evo

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/jdeal-mediamath/clockwork"
	"golang.org/x/sync/errgroup"

	"dinoevo/internal/agent"
	"dinoevo/internal/config"
	"dinoevo/internal/genotype"
	"dinoevo/internal/model"
	"dinoevo/internal/nn"
	"dinoevo/internal/scape"
	"dinoevo/internal/storage"
)

const landSeedAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ScapeFactory builds the evaluator for one unit of work.
type ScapeFactory func(cfg config.Config, landSeed string) scape.Scape

func RunnerScapeFactory(cfg config.Config, landSeed string) scape.Scape {
	return scape.RunnerScape{Config: cfg, LandSeed: landSeed}
}

type MonitorConfig struct {
	Config      config.Config
	Store       storage.Store
	Generations int
	Workers     int
	Mutation    Operator
	Scape       ScapeFactory
	Reporter    Reporter
	Clock       clockwork.Clock
	// CPUSampler, when set, is sampled once per generation.
	CPUSampler func() (float64, error)
}

type RunResult struct {
	RunID           string
	Resumed         bool
	FirstGeneration int
	LastGeneration  int
	BestScore       uint64
	Diagnostics     []model.GenerationDiagnostics
	Survivors       []ScoredBrain
}

// PopulationMonitor drives generations: evaluate in parallel, select,
// checkpoint, then reseed and reproduce from the single orchestrator RNG.
type PopulationMonitor struct {
	cfg MonitorConfig
	src *rand.ChaCha8
	rng *rand.Rand
}

func NewPopulationMonitor(cfg MonitorConfig) (*PopulationMonitor, error) {
	if err := cfg.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Generations <= 0 {
		return nil, fmt.Errorf("generations must be > 0")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Mutation == nil {
		cfg.Mutation = BrainMutation{Config: cfg.Config}
	}
	if cfg.Scape == nil {
		cfg.Scape = RunnerScapeFactory
	}
	if cfg.Reporter == nil {
		cfg.Reporter = NopReporter{}
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	cfg.Config = cfg.Config.Clone()
	return &PopulationMonitor{cfg: cfg}, nil
}

type runState struct {
	runInfo     model.RunInfo
	population  []model.Brain
	landSeed    string
	firstGen    int
	resumed     bool
	diagnostics []model.GenerationDiagnostics
}

func (m *PopulationMonitor) Run(ctx context.Context) (RunResult, error) {
	store := m.cfg.Store
	if err := store.Init(ctx); err != nil {
		return RunResult{}, fmt.Errorf("init store: %w", err)
	}

	state, err := m.initialize(ctx)
	if err != nil {
		return RunResult{}, err
	}

	cfg := m.cfg.Config
	population := state.population
	landSeed := state.landSeed
	diagnostics := state.diagnostics
	runInfo := state.runInfo
	lastGen := state.firstGen + m.cfg.Generations - 1
	var survivors []ScoredBrain

	for gen := state.firstGen; gen <= lastGen; gen++ {
		if err := ctx.Err(); err != nil {
			return RunResult{}, err
		}
		started := m.cfg.Clock.Now()

		scored, failures, err := m.evaluatePopulation(ctx, population, landSeed)
		if err != nil {
			return RunResult{}, err
		}
		if len(scored) == 0 {
			return RunResult{}, fmt.Errorf("generation %d: %w: %d of %d units failed: %v",
				gen, ErrEmptyPopulation, len(failures), len(population), errors.Join(failures...))
		}

		survivors, err = SelectBest(scored, cfg.MaxScore)
		if err != nil {
			return RunResult{}, fmt.Errorf("generation %d: %w", gen, err)
		}

		diag := m.summarize(gen, population, scored, survivors, len(failures), landSeed, started)
		if gen%cfg.CheckpointInterval == 0 || gen == lastGen {
			if err := m.checkpoint(ctx, gen, survivors, landSeed); err != nil {
				return RunResult{}, err
			}
		}
		diagnostics = append(diagnostics, diag)
		if err := store.SaveGenerationDiagnostics(ctx, diagnostics); err != nil {
			return RunResult{}, fmt.Errorf("save diagnostics: %w", err)
		}
		runInfo.LastGeneration = gen
		if diag.BestScore > runInfo.BestScore {
			runInfo.BestScore = diag.BestScore
		}
		if err := store.SaveRunInfo(ctx, runInfo); err != nil {
			return RunResult{}, fmt.Errorf("save run info: %w", err)
		}
		m.cfg.Reporter.ReportGeneration(diag)

		if gen == lastGen {
			break
		}
		landSeed, population, err = m.advance(gen, landSeed, brainsOf(survivors))
		if err != nil {
			return RunResult{}, err
		}
	}

	return RunResult{
		RunID:           runInfo.ID,
		Resumed:         state.resumed,
		FirstGeneration: state.firstGen,
		LastGeneration:  lastGen,
		BestScore:       runInfo.BestScore,
		Diagnostics:     diagnostics,
		Survivors:       survivors,
	}, nil
}

// initialize either seeds a fresh population or restores the latest
// checkpoint and regenerates the population that follows it.
func (m *PopulationMonitor) initialize(ctx context.Context) (runState, error) {
	store := m.cfg.Store
	cfg := m.cfg.Config

	stored, hasParams, err := store.GetParams(ctx)
	if err != nil {
		return runState{}, fmt.Errorf("load params: %w", err)
	}
	if hasParams {
		if err := config.CheckCompatible(stored, cfg); err != nil {
			return runState{}, err
		}
	}

	latest, checkpoint, hasCheckpoint, err := storage.LatestCheckpoint(ctx, store)
	if err != nil {
		return runState{}, fmt.Errorf("load checkpoint: %w", err)
	}
	if !hasParams && hasCheckpoint {
		return runState{}, fmt.Errorf("%w: checkpoint without params", storage.ErrCheckpointCorrupt)
	}

	runInfo, hasRunInfo, err := store.GetRunInfo(ctx)
	if err != nil {
		return runState{}, fmt.Errorf("load run info: %w", err)
	}
	if !hasRunInfo {
		runInfo = storage.NewRunInfo(uuid.NewString(), m.cfg.Clock.Now().UTC().Format(time.RFC3339))
	}

	if !hasCheckpoint {
		if err := store.SaveParams(ctx, cfg); err != nil {
			return runState{}, fmt.Errorf("save params: %w", err)
		}
		if err := store.SaveRunInfo(ctx, runInfo); err != nil {
			return runState{}, fmt.Errorf("save run info: %w", err)
		}
		m.rng, m.src = genotype.NewRNG(cfg.BrainSeed)
		return runState{
			runInfo:    runInfo,
			population: genotype.NewPopulation(cfg, m.rng, cfg.PopulationSize),
			landSeed:   cfg.LandSeed,
			firstGen:   0,
		}, nil
	}

	src := &rand.ChaCha8{}
	if err := src.UnmarshalBinary(checkpoint.RNG); err != nil {
		return runState{}, fmt.Errorf("%w: generation %d rng: %v", storage.ErrCheckpointCorrupt, latest, err)
	}
	m.src = src
	m.rng = rand.New(src)

	landSeed := checkpoint.LandSeed
	if landSeed == "" {
		landSeed = cfg.LandSeed
	}
	landSeed, population, err := m.advance(latest, landSeed, checkpoint.Brains)
	if err != nil {
		return runState{}, err
	}

	diagnostics, _, err := store.GetGenerationDiagnostics(ctx)
	if err != nil {
		return runState{}, fmt.Errorf("load diagnostics: %w", err)
	}
	kept := diagnostics[:0]
	for _, d := range diagnostics {
		if d.Generation <= latest {
			kept = append(kept, d)
		}
	}

	return runState{
		runInfo:     runInfo,
		population:  population,
		landSeed:    landSeed,
		firstGen:    latest + 1,
		resumed:     true,
		diagnostics: kept,
	}, nil
}

// advance performs the post-selection step of generation gen. Terrain
// reseed draws always happen before mutation draws.
func (m *PopulationMonitor) advance(gen int, landSeed string, survivors []model.Brain) (string, []model.Brain, error) {
	landSeed = m.nextLandSeed(gen, landSeed)
	next, err := Reproduce(m.rng, survivors, m.cfg.Config.PopulationSize, m.cfg.Config.MaxElites, m.cfg.Mutation)
	if err != nil {
		return "", nil, fmt.Errorf("reproduce after generation %d: %w", gen, err)
	}
	return landSeed, next, nil
}

func (m *PopulationMonitor) nextLandSeed(gen int, current string) string {
	interval := m.cfg.Config.LandSeedRegenerateInterval
	if interval <= 0 || (gen+1)%interval != 0 {
		return current
	}
	buf := make([]byte, m.cfg.Config.LandSeedLength)
	for i := range buf {
		buf[i] = landSeedAlphabet[m.rng.IntN(len(landSeedAlphabet))]
	}
	return string(buf)
}

func (m *PopulationMonitor) checkpoint(ctx context.Context, gen int, survivors []ScoredBrain, landSeed string) error {
	state, err := m.src.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal rng: %w", err)
	}
	cp := model.Checkpoint{
		Brains:   brainsOf(survivors),
		RNG:      state,
		Score:    survivors[0].Score,
		LandSeed: landSeed,
	}
	if err := m.cfg.Store.SaveCheckpoint(ctx, gen, cp); err != nil {
		return fmt.Errorf("save checkpoint %d: %w", gen, err)
	}
	return nil
}

// evaluatePopulation runs one game per brain on a bounded pool. A unit that
// errors or panics is reported as a failure and left out of the scores;
// the order of the remaining scores follows the population order.
func (m *PopulationMonitor) evaluatePopulation(ctx context.Context, population []model.Brain, landSeed string) ([]ScoredBrain, []error, error) {
	type result struct {
		scored ScoredBrain
		err    error
	}
	results := make([]result, len(population))

	var g errgroup.Group
	g.SetLimit(m.cfg.Workers)
	for i, brain := range population {
		g.Go(func() error {
			scored, err := m.evaluateBrain(ctx, i, brain, landSeed)
			results[i] = result{scored: scored, err: err}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	scored := make([]ScoredBrain, 0, len(population))
	var failures []error
	for i, r := range results {
		if r.err != nil {
			failures = append(failures, fmt.Errorf("brain %d: %w", i, r.err))
			continue
		}
		scored = append(scored, r.scored)
	}
	return scored, failures, nil
}

func (m *PopulationMonitor) evaluateBrain(ctx context.Context, idx int, brain model.Brain, landSeed string) (scored ScoredBrain, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("simulation panic: %v", r)
		}
	}()
	cfg := m.cfg.Config.Clone()
	unit := agent.NewBrainAgent(fmt.Sprintf("brain-%d", idx), brain)
	fitness, trace, err := m.cfg.Scape(cfg, landSeed).Evaluate(ctx, unit)
	if err != nil {
		return ScoredBrain{}, err
	}
	return ScoredBrain{
		Brain:  brain,
		Score:  uint64(fitness),
		Energy: nn.BrainEnergy(cfg, brain),
		Trace:  trace,
	}, nil
}

func (m *PopulationMonitor) summarize(gen int, population []model.Brain, scored, survivors []ScoredBrain, failed int, landSeed string, started time.Time) model.GenerationDiagnostics {
	total := 0.0
	minScore := scored[0].Score
	for _, s := range scored {
		total += float64(s.Score)
		if s.Score < minScore {
			minScore = s.Score
		}
	}
	bestEnergy := survivors[0].Energy
	for _, s := range survivors[1:] {
		if s.Energy < bestEnergy {
			bestEnergy = s.Energy
		}
	}
	d := model.GenerationDiagnostics{
		Generation: gen,
		BestScore:  survivors[0].Score,
		BestEnergy: bestEnergy,
		MeanScore:  total / float64(len(scored)),
		MinScore:   minScore,
		Population: len(population),
		Evaluated:  len(scored),
		Failed:     failed,
		Survivors:  len(survivors),
		Diversity:  genotype.Diversity(population),
		LandSeed:   landSeed,
		ElapsedMS:  m.cfg.Clock.Now().Sub(started).Milliseconds(),
	}
	if m.cfg.CPUSampler != nil {
		if pct, err := m.cfg.CPUSampler(); err == nil {
			d.CPUPercent = pct
		}
	}
	return d
}
