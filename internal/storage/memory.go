package storage

import (
	"context"
	"errors"
	"sort"
	"sync"

	"dinoevo/internal/config"
	"dinoevo/internal/genotype"
	"dinoevo/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	params      *config.Config
	runInfo     *model.RunInfo
	checkpoints map[int]model.Checkpoint
	diagnostics []model.GenerationDiagnostics
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	s.initialized = true
	s.checkpoints = make(map[int]model.Checkpoint)
	return nil
}

func (s *MemoryStore) SaveParams(_ context.Context, cfg config.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return errNotInitialized
	}

	cloned := cfg.Clone()
	s.params = &cloned
	return nil
}

func (s *MemoryStore) GetParams(_ context.Context) (config.Config, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.params == nil {
		return config.Config{}, false, nil
	}
	return s.params.Clone(), true, nil
}

func (s *MemoryStore) SaveRunInfo(_ context.Context, info model.RunInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return errNotInitialized
	}

	copied := info
	s.runInfo = &copied
	return nil
}

func (s *MemoryStore) GetRunInfo(_ context.Context) (model.RunInfo, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.runInfo == nil {
		return model.RunInfo{}, false, nil
	}
	return *s.runInfo, true, nil
}

func (s *MemoryStore) SaveCheckpoint(_ context.Context, generation int, checkpoint model.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return errNotInitialized
	}

	s.checkpoints[generation] = cloneCheckpoint(checkpoint)
	return nil
}

func (s *MemoryStore) GetCheckpoint(_ context.Context, generation int) (model.Checkpoint, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	checkpoint, ok := s.checkpoints[generation]
	if !ok {
		return model.Checkpoint{}, false, nil
	}
	return cloneCheckpoint(checkpoint), true, nil
}

func (s *MemoryStore) ListCheckpoints(_ context.Context) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]int, 0, len(s.checkpoints))
	for generation := range s.checkpoints {
		out = append(out, generation)
	}
	sort.Ints(out)
	return out, nil
}

func (s *MemoryStore) SaveGenerationDiagnostics(_ context.Context, diagnostics []model.GenerationDiagnostics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return errNotInitialized
	}

	s.diagnostics = append([]model.GenerationDiagnostics(nil), diagnostics...)
	return nil
}

func (s *MemoryStore) GetGenerationDiagnostics(_ context.Context) ([]model.GenerationDiagnostics, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.diagnostics == nil {
		return nil, false, nil
	}
	return append([]model.GenerationDiagnostics(nil), s.diagnostics...), true, nil
}

var errNotInitialized = errors.New("store is not initialized")

func cloneCheckpoint(cp model.Checkpoint) model.Checkpoint {
	return model.Checkpoint{
		Brains:   genotype.ClonePopulation(cp.Brains),
		RNG:      append([]byte(nil), cp.RNG...),
		Score:    cp.Score,
		LandSeed: cp.LandSeed,
	}
}
