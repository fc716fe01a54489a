package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"dinoevo/internal/model"
	"dinoevo/pkg/dinoevo"
)

func runTrain(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	rf := addRunFlags(fs)
	cf := addConfigFlags(fs)
	generations := fs.Int("generations", 100, "generations to run in this invocation")
	workers := fs.Int("workers", 4, "parallel simulations")
	sampleCPU := fs.Bool("cpu", true, "sample CPU utilisation per generation")
	quiet := fs.Bool("quiet", false, "suppress per-generation progress")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := cf.load(fs)
	if err != nil {
		return err
	}

	client, err := rf.open()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	var reporter *progressReporter
	req := dinoevo.TrainRequest{
		Config:      cfg,
		Generations: *generations,
		Workers:     *workers,
		SampleCPU:   *sampleCPU,
	}
	if !*quiet {
		reporter = newProgressReporter(out)
		req.Reporter = reporter
	}
	summary, err := client.Train(ctx, req)
	if reporter != nil {
		reporter.Done()
	}
	if err != nil {
		return err
	}

	mode := "fresh"
	if summary.Resumed {
		mode = "resumed"
	}
	fmt.Fprintf(out, "run_id=%s mode=%s generations=%d..%d best_score=%d survivors=%d best=%s run_dir=%s\n",
		summary.RunID, mode, summary.FirstGeneration, summary.LastGeneration,
		summary.BestScore, summary.Survivors, summary.BestFingerprint, client.RunDir())
	return nil
}

// progressReporter rewrites one status line on a terminal and prints one
// line per generation otherwise.
type progressReporter struct {
	w       io.Writer
	tty     bool
	lastLen int
}

func newProgressReporter(w io.Writer) *progressReporter {
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &progressReporter{w: w, tty: tty}
}

func (r *progressReporter) ReportGeneration(d model.GenerationDiagnostics) {
	line := formatGeneration(d)
	if !r.tty {
		fmt.Fprintln(r.w, line)
		return
	}
	pad := ""
	if n := r.lastLen - len(line); n > 0 {
		pad = strings.Repeat(" ", n)
	}
	fmt.Fprintf(r.w, "\r%s%s", line, pad)
	r.lastLen = len(line)
}

func (r *progressReporter) Done() {
	if r.tty && r.lastLen > 0 {
		fmt.Fprintln(r.w)
		r.lastLen = 0
	}
}

func formatGeneration(d model.GenerationDiagnostics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "gen %s  best %s  energy %s  mean %s  pop %s  survivors %d  unique %d",
		humanize.Comma(int64(d.Generation)),
		humanize.Comma(int64(d.BestScore)),
		humanize.FormatFloat("#,###.##", d.BestEnergy),
		humanize.FormatFloat("#,###.##", d.MeanScore),
		humanize.Comma(int64(d.Population)),
		d.Survivors,
		d.Diversity,
	)
	if d.Failed > 0 {
		fmt.Fprintf(&b, "  failed %d", d.Failed)
	}
	fmt.Fprintf(&b, "  %s", (time.Duration(d.ElapsedMS) * time.Millisecond).String())
	if d.CPUPercent > 0 {
		fmt.Fprintf(&b, "  cpu %.0f%%", d.CPUPercent)
	}
	fmt.Fprintf(&b, "  seed %s", d.LandSeed)
	return b.String()
}
