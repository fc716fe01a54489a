package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dinoevo/internal/model"
)

func writeTestConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "params.toml")
	body := "population_size = 5\nmax_elites = 2\nmax_score = 3\ncheckpoint_interval = 2\nbrain_seed = \"cli\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestCLITrainThenInspect(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	runDir := filepath.Join(base, "run")
	cfgPath := writeTestConfig(t, base)
	noEnv := filepath.Join(base, "missing.env")

	var out bytes.Buffer
	if err := runWithOutput(ctx, []string{"train", "--run-dir", runDir, "--config", cfgPath, "--env-file", noEnv, "--generations", "3", "--workers", "2", "--cpu=false"}, &out); err != nil {
		t.Fatalf("train: %v", err)
	}
	if !strings.Contains(out.String(), "mode=fresh") || !strings.Contains(out.String(), "gen 2") {
		t.Fatalf("unexpected train output:\n%s", out.String())
	}

	out.Reset()
	if err := runWithOutput(ctx, []string{"train", "--run-dir", runDir, "--config", cfgPath, "--env-file", noEnv, "--generations", "1", "--cpu=false", "--quiet"}, &out); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if !strings.Contains(out.String(), "mode=resumed") || !strings.Contains(out.String(), "generations=3..3") {
		t.Fatalf("unexpected resume output:\n%s", out.String())
	}

	out.Reset()
	if err := runWithOutput(ctx, []string{"history", "--run-dir", runDir, "--csv"}, &out); err != nil {
		t.Fatalf("history: %v", err)
	}
	if lines := strings.Count(out.String(), "\n"); lines != 5 {
		t.Fatalf("expected header + 4 rows, got %d lines:\n%s", lines, out.String())
	}

	out.Reset()
	if err := runWithOutput(ctx, []string{"inspect", "--run-dir", runDir, "--dump"}, &out); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !strings.Contains(out.String(), "generation=3") || !strings.Contains(out.String(), "Webs:") {
		t.Fatalf("unexpected inspect output:\n%s", out.String())
	}

	out.Reset()
	if err := runWithOutput(ctx, []string{"replay", "--run-dir", runDir, "--generation", "2"}, &out); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !strings.Contains(out.String(), "generation=2 brain=0") {
		t.Fatalf("unexpected replay output:\n%s", out.String())
	}

	plotPath := filepath.Join(base, "plot.png")
	out.Reset()
	if err := runWithOutput(ctx, []string{"plot", "--run-dir", runDir, "--out", plotPath}, &out); err != nil {
		t.Fatalf("plot: %v", err)
	}
	if _, err := os.Stat(plotPath); err != nil {
		t.Fatalf("expected plot file: %v", err)
	}

	out.Reset()
	if err := runWithOutput(ctx, []string{"params", "--run-dir", runDir, "--stored", "--format", "yaml"}, &out); err != nil {
		t.Fatalf("params: %v", err)
	}
	if !strings.Contains(out.String(), "brain_seed: cli") {
		t.Fatalf("unexpected params output:\n%s", out.String())
	}

	other := filepath.Join(base, "other.toml")
	if err := os.WriteFile(other, []byte("population_size = 6\nmax_elites = 2\nmax_score = 3\ncheckpoint_interval = 2\nbrain_seed = \"cli\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	err := runWithOutput(ctx, []string{"train", "--run-dir", runDir, "--config", other, "--env-file", noEnv, "--generations", "1", "--quiet"}, &out)
	if err == nil || !strings.Contains(err.Error(), "population_size") {
		t.Fatalf("expected params mismatch naming population_size, got %v", err)
	}
}

func TestCLIParamsFlagOverrides(t *testing.T) {
	var out bytes.Buffer
	noEnv := filepath.Join(t.TempDir(), "missing.env")
	if err := runWithOutput(context.Background(), []string{"params", "--env-file", noEnv, "--population", "12", "--land-seed", "dunes", "--format", "json"}, &out); err != nil {
		t.Fatalf("params: %v", err)
	}
	if !strings.Contains(out.String(), `"population_size": 12`) || !strings.Contains(out.String(), `"land_seed": "dunes"`) {
		t.Fatalf("unexpected params output:\n%s", out.String())
	}
	if err := runWithOutput(context.Background(), []string{"params", "--env-file", noEnv, "--population", "0"}, &out); err == nil {
		t.Fatal("expected validation error for population 0")
	}
}

func TestUnknownCommandSuggests(t *testing.T) {
	err := runWithOutput(context.Background(), []string{"trian"}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), `did you mean "train"`) {
		t.Fatalf("expected suggestion, got %v", err)
	}
	err = runWithOutput(context.Background(), []string{"zzzzzzzz"}, &bytes.Buffer{})
	if err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Fatalf("expected no suggestion, got %v", err)
	}
	if err := runWithOutput(context.Background(), nil, &bytes.Buffer{}); err == nil {
		t.Fatal("expected missing command error")
	}
}

func TestProgressReporterPlainOutput(t *testing.T) {
	var buf bytes.Buffer
	r := newProgressReporter(&buf)
	r.ReportGeneration(model.GenerationDiagnostics{Generation: 1200, BestScore: 4, Population: 1500, Failed: 2, LandSeed: "42"})
	r.Done()
	line := buf.String()
	if !strings.Contains(line, "gen 1,200") || !strings.Contains(line, "pop 1,500") || !strings.Contains(line, "failed 2") {
		t.Fatalf("unexpected progress line %q", line)
	}
	if strings.Contains(line, "\r") {
		t.Fatal("non-terminal output must not rewrite lines")
	}
}
