package dinoevo

import (
	"bytes"
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jdeal-mediamath/clockwork"

	"dinoevo/internal/config"
	"dinoevo/internal/feed"
	"dinoevo/internal/scape"
	"dinoevo/internal/storage"
)

func smallConfig() config.Config {
	cfg := config.Default()
	cfg.PopulationSize = 5
	cfg.MaxElites = 2
	cfg.MaxScore = 3
	cfg.CheckpointInterval = 2
	cfg.BrainSeed = "client"
	return cfg
}

func newFileClient(t *testing.T) (*Client, string) {
	t.Helper()
	dir := t.TempDir()
	client, err := New(Options{StoreKind: "file", RunDir: dir})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client, dir
}

func TestClientTrainHistoryAndResume(t *testing.T) {
	ctx := context.Background()
	client, dir := newFileClient(t)

	first, err := client.Train(ctx, TrainRequest{Config: smallConfig(), Generations: 2, Workers: 2})
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if first.RunID == "" || first.Resumed || first.LastGeneration != 1 || first.BestFingerprint == "" {
		t.Fatalf("unexpected first summary %+v", first)
	}
	for _, name := range []string{"params.json", "run.json", "diagnostics.json", "brain0.json", "brain1.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s in run folder: %v", name, err)
		}
	}

	second, err := client.Train(ctx, TrainRequest{Config: smallConfig(), Generations: 1})
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if !second.Resumed || second.FirstGeneration != 2 || second.RunID != first.RunID {
		t.Fatalf("unexpected resume summary %+v", second)
	}

	history, err := client.History(ctx, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 generations of history, got %d", len(history))
	}
	recent, err := client.History(ctx, 1)
	if err != nil {
		t.Fatalf("history limit: %v", err)
	}
	if len(recent) != 1 || recent[0].Generation != 2 {
		t.Fatalf("unexpected limited history %+v", recent)
	}

	var csvOut bytes.Buffer
	if err := client.ExportHistoryCSV(ctx, &csvOut); err != nil {
		t.Fatalf("export csv: %v", err)
	}
	if got := strings.Count(csvOut.String(), "\n"); got != 4 {
		t.Fatalf("expected header + 3 rows, got %d lines", got)
	}

	if err := client.Plot(ctx, filepath.Join(dir, "history.png"), ""); err != nil {
		t.Fatalf("plot: %v", err)
	}

	mismatched := smallConfig()
	mismatched.PopulationSize = 6
	if _, err := client.Train(ctx, TrainRequest{Config: mismatched, Generations: 1}); !errors.Is(err, config.ErrMismatch) {
		t.Fatalf("expected ErrMismatch, got %v", err)
	}
}

func TestClientInspectAndReplayReproduceScore(t *testing.T) {
	ctx := context.Background()
	client, _ := newFileClient(t)
	if _, err := client.Train(ctx, TrainRequest{Config: smallConfig(), Generations: 3, Workers: 3}); err != nil {
		t.Fatalf("train: %v", err)
	}

	gens, err := client.Checkpoints(ctx)
	if err != nil {
		t.Fatalf("checkpoints: %v", err)
	}
	if len(gens) != 2 || gens[0] != 0 || gens[1] != 2 {
		t.Fatalf("unexpected checkpoint generations %v", gens)
	}

	report, err := client.Inspect(ctx, CheckpointRequest{Latest: true})
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if report.Generation != 2 || len(report.Brains) == 0 || report.Brains[0].Signature.Fingerprint == "" {
		t.Fatalf("unexpected report %+v", report)
	}

	frames := 0
	res, err := client.Replay(ctx, ReplayRequest{
		Checkpoint: CheckpointRequest{Latest: true},
		OnFrame:    func(scape.Frame) { frames++ },
	})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if res.Score != report.Score {
		t.Fatalf("replayed score %d, checkpoint recorded %d", res.Score, report.Score)
	}
	if frames != res.Ticks {
		t.Fatalf("expected one frame per tick, got %d frames for %d ticks", frames, res.Ticks)
	}

	if _, err := client.Replay(ctx, ReplayRequest{Checkpoint: CheckpointRequest{Latest: true}, BrainIndex: 99}); err == nil {
		t.Fatal("expected out of range brain index error")
	}
	if _, err := client.Inspect(ctx, CheckpointRequest{Generation: 1}); !errors.Is(err, ErrNoCheckpoint) {
		t.Fatalf("expected ErrNoCheckpoint for generation 1, got %v", err)
	}
}

func TestClientEmptyRunFolder(t *testing.T) {
	ctx := context.Background()
	client, _ := newFileClient(t)
	if _, err := client.Params(ctx); err == nil {
		t.Fatal("expected missing params error")
	}
	history, err := client.History(ctx, 0)
	if err != nil || len(history) != 0 {
		t.Fatalf("expected empty history, got %v %v", history, err)
	}
	if _, err := New(Options{StoreKind: "bogus"}); err == nil {
		t.Fatal("expected unsupported backend error")
	}
}

func newTrainedMemoryClient(t *testing.T) *Client {
	t.Helper()
	client := NewWithStore(storage.NewMemoryStore())
	if _, err := client.Train(context.Background(), TrainRequest{Config: smallConfig(), Generations: 1, Workers: 2}); err != nil {
		t.Fatalf("train: %v", err)
	}
	return client
}

func TestClientWatchReportsListenError(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer busy.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client := newTrainedMemoryClient(t)
	_, err = client.Watch(ctx, WatchRequest{
		Addr:   busy.Addr().String(),
		Manual: true,
		Clock:  clockwork.NewFakeClock(),
	})
	if err == nil || errors.Is(err, context.Canceled) || !strings.Contains(err.Error(), "feed listen") {
		t.Fatalf("expected the listen failure, got %v", err)
	}
}

func TestClientWatchStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client := newTrainedMemoryClient(t)
	ready := false
	res, err := client.Watch(ctx, WatchRequest{
		Addr:       "127.0.0.1:0",
		Checkpoint: CheckpointRequest{Latest: true},
		Clock:      clockwork.NewFakeClock(),
		OnReady: func(*feed.Server) {
			ready = true
			cancel()
		},
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !ready || res.Generation != 0 || res.Ticks != 0 || res.LandSeed == "" {
		t.Fatalf("unexpected watch result %+v (ready=%t)", res, ready)
	}
}
