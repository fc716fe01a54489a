package storage

import (
	"context"

	"dinoevo/internal/config"
	"dinoevo/internal/model"
)

// Store persists one training run: its parameters, run info, per-generation
// checkpoints and diagnostics history.
type Store interface {
	Init(ctx context.Context) error
	SaveParams(ctx context.Context, cfg config.Config) error
	GetParams(ctx context.Context) (config.Config, bool, error)
	SaveRunInfo(ctx context.Context, info model.RunInfo) error
	GetRunInfo(ctx context.Context) (model.RunInfo, bool, error)
	SaveCheckpoint(ctx context.Context, generation int, checkpoint model.Checkpoint) error
	GetCheckpoint(ctx context.Context, generation int) (model.Checkpoint, bool, error)
	ListCheckpoints(ctx context.Context) ([]int, error)
	SaveGenerationDiagnostics(ctx context.Context, diagnostics []model.GenerationDiagnostics) error
	GetGenerationDiagnostics(ctx context.Context) ([]model.GenerationDiagnostics, bool, error)
}

// LatestCheckpoint returns the checkpoint with the highest generation index.
func LatestCheckpoint(ctx context.Context, store Store) (int, model.Checkpoint, bool, error) {
	generations, err := store.ListCheckpoints(ctx)
	if err != nil {
		return 0, model.Checkpoint{}, false, err
	}
	if len(generations) == 0 {
		return 0, model.Checkpoint{}, false, nil
	}
	latest := generations[len(generations)-1]
	checkpoint, ok, err := store.GetCheckpoint(ctx, latest)
	if err != nil || !ok {
		return 0, model.Checkpoint{}, false, err
	}
	return latest, checkpoint, true, nil
}
