package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/xrash/smetrics"

	"dinoevo/internal/config"
	"dinoevo/pkg/dinoevo"
)

var commands = []string{"train", "history", "inspect", "replay", "plot", "params", "watch"}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	return runWithOutput(ctx, args, os.Stdout)
}

func runWithOutput(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "train":
		return runTrain(ctx, args[1:], out)
	case "history":
		return runHistory(ctx, args[1:], out)
	case "inspect":
		return runInspect(ctx, args[1:], out)
	case "replay":
		return runReplay(ctx, args[1:], out)
	case "plot":
		return runPlot(ctx, args[1:], out)
	case "params":
		return runParams(ctx, args[1:], out)
	case "watch":
		return runWatch(ctx, args[1:], out)
	default:
		msg := fmt.Sprintf("unknown command: %s", args[0])
		if s := suggestCommand(args[0]); s != "" {
			msg += fmt.Sprintf(" (did you mean %q?)", s)
		}
		return usageError(msg)
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: dinoevoctl <%s> [flags]", msg, strings.Join(commands, "|"))
}

// suggestCommand returns the closest known command within edit distance 2.
func suggestCommand(name string) string {
	best, bestDist := "", 3
	for _, cmd := range commands {
		if d := smetrics.WagnerFischer(strings.ToLower(name), cmd, 1, 1, 2); d < bestDist {
			best, bestDist = cmd, d
		}
	}
	return best
}

// runFlags are shared by every subcommand that opens a run folder.
type runFlags struct {
	runDir    *string
	storeKind *string
}

func addRunFlags(fs *flag.FlagSet) runFlags {
	return runFlags{
		runDir:    fs.String("run-dir", "run", "run folder holding params, checkpoints and history"),
		storeKind: fs.String("store", "file", "store backend: file|memory|sqlite"),
	}
}

func (f runFlags) open() (*dinoevo.Client, error) {
	return dinoevo.New(dinoevo.Options{StoreKind: *f.storeKind, RunDir: *f.runDir})
}

// configFlags load a parameter set: defaults, then the optional file, then
// the environment, then explicit flags.
type configFlags struct {
	path       *string
	envFile    *string
	population *int
	maxScore   *uint64
	brainSeed  *string
	landSeed   *string
}

func addConfigFlags(fs *flag.FlagSet) configFlags {
	return configFlags{
		path:       fs.String("config", "", "parameter file (.toml, .yaml or .json)"),
		envFile:    fs.String("env-file", ".env", "dotenv file with DINOEVO_* overrides"),
		population: fs.Int("population", 0, "override population_size"),
		maxScore:   fs.Uint64("max-score", 0, "override max_score"),
		brainSeed:  fs.String("brain-seed", "", "override brain_seed"),
		landSeed:   fs.String("land-seed", "", "override land_seed"),
	}
}

func (f configFlags) load(fs *flag.FlagSet) (config.Config, error) {
	cfg, err := config.Load(*f.path)
	if err != nil {
		return config.Config{}, err
	}
	cfg, err = config.ApplyEnv(cfg, *f.envFile)
	if err != nil {
		return config.Config{}, err
	}
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "population":
			cfg.PopulationSize = *f.population
		case "max-score":
			cfg.MaxScore = *f.maxScore
		case "brain-seed":
			cfg.BrainSeed = *f.brainSeed
		case "land-seed":
			cfg.LandSeed = *f.landSeed
		}
	})
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
