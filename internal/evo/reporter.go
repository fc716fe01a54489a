package evo

import (
	"fmt"
	"io"

	"dinoevo/internal/model"
)

// Reporter receives one diagnostics record per finished generation.
type Reporter interface {
	ReportGeneration(d model.GenerationDiagnostics)
}

type NopReporter struct{}

func (NopReporter) ReportGeneration(model.GenerationDiagnostics) {}

// WriterReporter prints one plain line per generation.
type WriterReporter struct {
	W io.Writer
}

func (r WriterReporter) ReportGeneration(d model.GenerationDiagnostics) {
	fmt.Fprintf(r.W, "generation=%d best_score=%d best_energy=%.3f mean_score=%.2f survivors=%d failed=%d land_seed=%s\n",
		d.Generation, d.BestScore, d.BestEnergy, d.MeanScore, d.Survivors, d.Failed, d.LandSeed)
}
