package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"dinoevo/internal/config"
	"dinoevo/internal/model"
)

func sampleCheckpoint(score uint64) model.Checkpoint {
	return model.Checkpoint{
		Brains: []model.Brain{{Webs: []model.NeuroneWeb{{
			Action: model.ActionJump,
			Neurones: []model.Neurone{{
				X: 120.5, Y: 40.25, Width: 20, Height: 20,
				Condition: model.ConditionCollide, Polarity: model.PolarityAssert,
			}},
		}}}},
		RNG:      []byte{1, 2, 3, 4, 5},
		Score:    score,
		LandSeed: "hills",
	}
}

// exerciseStore runs the same round trips against every backend.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	if _, ok, err := store.GetParams(ctx); err != nil || ok {
		t.Fatalf("expected no params yet: ok=%v err=%v", ok, err)
	}
	if latest, _, ok, err := LatestCheckpoint(ctx, store); err != nil || ok {
		t.Fatalf("expected no checkpoints yet: latest=%d ok=%v err=%v", latest, ok, err)
	}

	cfg := config.Default()
	cfg.BrainSeed = "stored"
	if err := store.SaveParams(ctx, cfg); err != nil {
		t.Fatalf("save params: %v", err)
	}
	loaded, ok, err := store.GetParams(ctx)
	if err != nil || !ok {
		t.Fatalf("get params: ok=%v err=%v", ok, err)
	}
	if err := config.CheckCompatible(loaded, cfg); err != nil {
		t.Fatalf("params round trip: %v", err)
	}

	info := NewRunInfo("run-1", "2026-01-02T03:04:05Z")
	info.LastGeneration = 4
	info.BestScore = 17
	if err := store.SaveRunInfo(ctx, info); err != nil {
		t.Fatalf("save run info: %v", err)
	}
	gotInfo, ok, err := store.GetRunInfo(ctx)
	if err != nil || !ok || gotInfo != info {
		t.Fatalf("run info round trip: got=%+v ok=%v err=%v", gotInfo, ok, err)
	}

	for _, generation := range []int{10, 2, 0} {
		if err := store.SaveCheckpoint(ctx, generation, sampleCheckpoint(uint64(generation))); err != nil {
			t.Fatalf("save checkpoint %d: %v", generation, err)
		}
	}
	generations, err := store.ListCheckpoints(ctx)
	if err != nil {
		t.Fatalf("list checkpoints: %v", err)
	}
	if !reflect.DeepEqual(generations, []int{0, 2, 10}) {
		t.Fatalf("unexpected checkpoint list: %v", generations)
	}
	latest, checkpoint, ok, err := LatestCheckpoint(ctx, store)
	if err != nil || !ok || latest != 10 {
		t.Fatalf("latest checkpoint: gen=%d ok=%v err=%v", latest, ok, err)
	}
	if !reflect.DeepEqual(checkpoint, sampleCheckpoint(10)) {
		t.Fatalf("checkpoint round trip mismatch: %+v", checkpoint)
	}
	if _, ok, err := store.GetCheckpoint(ctx, 3); err != nil || ok {
		t.Fatalf("expected missing checkpoint 3: ok=%v err=%v", ok, err)
	}

	diagnostics := []model.GenerationDiagnostics{
		{Generation: 0, BestScore: 3, MeanScore: 1.5, Population: 10, Evaluated: 10},
		{Generation: 1, BestScore: 5, MeanScore: 2.5, Population: 12, Evaluated: 11, Failed: 1},
	}
	if err := store.SaveGenerationDiagnostics(ctx, diagnostics); err != nil {
		t.Fatalf("save diagnostics: %v", err)
	}
	gotDiagnostics, ok, err := store.GetGenerationDiagnostics(ctx)
	if err != nil || !ok || !reflect.DeepEqual(gotDiagnostics, diagnostics) {
		t.Fatalf("diagnostics round trip: got=%+v ok=%v err=%v", gotDiagnostics, ok, err)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestFileStoreRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	exerciseStore(t, NewFileStore(dir))

	for _, name := range []string{"params.json", "run.json", "diagnostics.json", "brain0.json", "brain2.json", "brain10.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s in run folder: %v", name, err)
		}
	}
}

func TestMemoryStoreCopiesCheckpoints(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	cp := sampleCheckpoint(1)
	if err := store.SaveCheckpoint(ctx, 1, cp); err != nil {
		t.Fatalf("save: %v", err)
	}
	cp.Brains[0].Webs[0].Neurones[0].X = -1
	cp.RNG[0] = 99
	got, _, _ := store.GetCheckpoint(ctx, 1)
	if got.Brains[0].Webs[0].Neurones[0].X != 120.5 || got.RNG[0] != 1 {
		t.Fatal("memory store aliased caller data")
	}
}

func TestMemoryStoreRequiresInit(t *testing.T) {
	store := NewMemoryStore()
	if err := store.SaveParams(context.Background(), config.Default()); err == nil {
		t.Fatal("expected error before init")
	}
}

func TestFileStoreCorruptCheckpoint(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewFileStore(dir)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, CheckpointFileName(3)), []byte(`{"brains": [`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, _, _, err := LatestCheckpoint(ctx, store)
	if !errors.Is(err, ErrCheckpointCorrupt) {
		t.Fatalf("expected ErrCheckpointCorrupt, got %v", err)
	}
}

func TestFileStoreIgnoresUnrelatedFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewFileStore(dir)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	for _, name := range []string{"brainX.json", "brain-1.json", "notes.txt", "brain4.json.tmp-1"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	generations, err := store.ListCheckpoints(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(generations) != 0 {
		t.Fatalf("expected no checkpoints, got %v", generations)
	}
}

func TestNewStoreBackends(t *testing.T) {
	for _, kind := range []string{"", "file", "memory"} {
		store, err := NewStore(kind, t.TempDir())
		if err != nil || store == nil {
			t.Fatalf("new %q store: %v", kind, err)
		}
	}
	if _, err := NewStore("unknown", ""); err == nil {
		t.Fatal("expected unsupported store error")
	}
}
