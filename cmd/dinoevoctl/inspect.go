package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/dustin/go-humanize"

	"dinoevo/internal/config"
	"dinoevo/internal/stats"
	"dinoevo/pkg/dinoevo"
)

func runHistory(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	rf := addRunFlags(fs)
	limit := fs.Int("limit", 0, "show only the most recent N generations")
	asCSV := fs.Bool("csv", false, "write CSV instead of a table")
	if err := fs.Parse(args); err != nil {
		return err
	}
	client, err := rf.open()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	history, err := client.History(ctx, *limit)
	if err != nil {
		return err
	}
	if *asCSV {
		return stats.WriteHistoryCSV(out, history)
	}
	for _, d := range history {
		fmt.Fprintln(out, formatGeneration(d))
	}
	if s := stats.Summarize(history); s.Generations > 0 {
		fmt.Fprintf(out, "generations=%d best_score=%d (gen %d) failed=%d total=%s\n",
			s.Generations, s.BestScore, s.BestGeneration, s.TotalFailed,
			(time.Duration(s.TotalElapsedMS) * time.Millisecond).String())
	}
	return nil
}

func checkpointFlags(fs *flag.FlagSet) (*int, *bool) {
	gen := fs.Int("generation", -1, "checkpoint generation; defaults to the latest")
	latest := fs.Bool("latest", false, "use the latest checkpoint")
	return gen, latest
}

func checkpointRequest(gen int, latest bool) dinoevo.CheckpointRequest {
	if latest || gen < 0 {
		return dinoevo.CheckpointRequest{Latest: true}
	}
	return dinoevo.CheckpointRequest{Generation: gen}
}

func runInspect(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	rf := addRunFlags(fs)
	gen, latest := checkpointFlags(fs)
	dump := fs.Bool("dump", false, "dump the full checkpoint structure")
	if err := fs.Parse(args); err != nil {
		return err
	}
	client, err := rf.open()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	report, err := client.Inspect(ctx, checkpointRequest(*gen, *latest))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "generation=%d score=%d land_seed=%q brains=%d\n",
		report.Generation, report.Score, report.LandSeed, len(report.Brains))
	for _, b := range report.Brains {
		s := b.Signature.Summary
		fmt.Fprintf(out, "  [%d] %s webs=%d neurones=%d vetoes=%d collide=%d energy=%.3f actions=%v\n",
			b.Index, b.Signature.Fingerprint, s.TotalWebs, s.TotalNeurones, s.TotalVetoes, s.TotalCollide, b.Energy, s.ActionDistribution)
	}
	if *dump {
		cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}
		cfg.Fdump(out, report.Checkpoint.Brains)
	}
	return nil
}

func runReplay(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	rf := addRunFlags(fs)
	gen, latest := checkpointFlags(fs)
	brain := fs.Int("brain", 0, "survivor index within the checkpoint")
	landSeed := fs.String("land-seed", "", "replay on different terrain")
	if err := fs.Parse(args); err != nil {
		return err
	}
	client, err := rf.open()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	res, err := client.Replay(ctx, dinoevo.ReplayRequest{
		Checkpoint: checkpointRequest(*gen, *latest),
		BrainIndex: *brain,
		LandSeed:   *landSeed,
	})
	if err != nil {
		return err
	}
	outcome := "max_score"
	if res.Lost {
		outcome = "collision"
	}
	fmt.Fprintf(out, "generation=%d brain=%d land_seed=%q score=%d outcome=%s ticks=%s simulated=%s\n",
		res.Generation, res.BrainIndex, res.LandSeed, res.Score, outcome, humanize.Comma(int64(res.Ticks)), res.Elapsed)
	return nil
}

func runPlot(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("plot", flag.ContinueOnError)
	rf := addRunFlags(fs)
	output := fs.String("out", "", "output image; defaults to <run-dir>/history.png")
	title := fs.String("title", "", "plot title; defaults to the run id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	client, err := rf.open()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	path := *output
	if path == "" {
		path = filepath.Join(*rf.runDir, "history.png")
	}
	if err := client.Plot(ctx, path, *title); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %s\n", path)
	return nil
}

func runParams(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("params", flag.ContinueOnError)
	rf := addRunFlags(fs)
	cf := addConfigFlags(fs)
	format := fs.String("format", "toml", "output format: json|toml|yaml")
	stored := fs.Bool("stored", false, "print the run folder's stored params")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var cfg config.Config
	if *stored {
		client, err := rf.open()
		if err != nil {
			return err
		}
		defer func() {
			_ = client.Close()
		}()
		if cfg, err = client.Params(ctx); err != nil {
			return err
		}
	} else {
		var err error
		if cfg, err = cf.load(fs); err != nil {
			return err
		}
	}
	data, err := config.Encode(cfg, *format)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

func runWatch(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	rf := addRunFlags(fs)
	gen, latest := checkpointFlags(fs)
	brain := fs.Int("brain", 0, "survivor index within the checkpoint")
	addr := fs.String("addr", ":9001", "listen address for the websocket feed")
	manual := fs.Bool("manual", false, "let the connected renderer play")
	if err := fs.Parse(args); err != nil {
		return err
	}
	client, err := rf.open()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	fmt.Fprintf(out, "serving frames on ws://%s/ws\n", *addr)
	res, err := client.Watch(ctx, dinoevo.WatchRequest{
		Addr:       *addr,
		Checkpoint: checkpointRequest(*gen, *latest),
		BrainIndex: *brain,
		Manual:     *manual,
		LogOut:     os.Stderr,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	fmt.Fprintf(out, "score=%d lost=%t ticks=%d\n", res.Score, res.Lost, res.Ticks)
	return nil
}
