package stats

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"dinoevo/internal/model"
)

var historyHeader = []string{
	"generation",
	"best_score",
	"best_energy",
	"mean_score",
	"min_score",
	"population",
	"evaluated",
	"failed",
	"survivors",
	"fingerprint_diversity",
	"land_seed",
	"elapsed_ms",
	"cpu_percent",
}

// WriteHistoryCSV writes one row per generation under a fixed header.
func WriteHistoryCSV(w io.Writer, history []model.GenerationDiagnostics) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(historyHeader); err != nil {
		return err
	}
	for _, d := range history {
		if err := writer.Write([]string{
			strconv.Itoa(d.Generation),
			strconv.FormatUint(d.BestScore, 10),
			strconv.FormatFloat(d.BestEnergy, 'f', -1, 64),
			strconv.FormatFloat(d.MeanScore, 'f', -1, 64),
			strconv.FormatUint(d.MinScore, 10),
			strconv.Itoa(d.Population),
			strconv.Itoa(d.Evaluated),
			strconv.Itoa(d.Failed),
			strconv.Itoa(d.Survivors),
			strconv.Itoa(d.Diversity),
			d.LandSeed,
			strconv.FormatInt(d.ElapsedMS, 10),
			strconv.FormatFloat(d.CPUPercent, 'f', 2, 64),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadHistoryCSV parses the output of WriteHistoryCSV.
func ReadHistoryCSV(r io.Reader) ([]model.GenerationDiagnostics, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(historyHeader)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("history csv is empty")
		}
		return nil, err
	}
	for i, name := range historyHeader {
		if header[i] != name {
			return nil, fmt.Errorf("history csv column %d: want %q, got %q", i, name, header[i])
		}
	}

	var out []model.GenerationDiagnostics
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		d, err := parseHistoryRow(record)
		if err != nil {
			return nil, fmt.Errorf("history csv line %d: %w", line, err)
		}
		out = append(out, d)
	}
	return out, nil
}

func parseHistoryRow(record []string) (model.GenerationDiagnostics, error) {
	var (
		d    model.GenerationDiagnostics
		errs []error
	)
	atoi := func(s string) int {
		v, err := strconv.Atoi(s)
		errs = append(errs, err)
		return v
	}
	atou := func(s string) uint64 {
		v, err := strconv.ParseUint(s, 10, 64)
		errs = append(errs, err)
		return v
	}
	atof := func(s string) float64 {
		v, err := strconv.ParseFloat(s, 64)
		errs = append(errs, err)
		return v
	}

	d.Generation = atoi(record[0])
	d.BestScore = atou(record[1])
	d.BestEnergy = atof(record[2])
	d.MeanScore = atof(record[3])
	d.MinScore = atou(record[4])
	d.Population = atoi(record[5])
	d.Evaluated = atoi(record[6])
	d.Failed = atoi(record[7])
	d.Survivors = atoi(record[8])
	d.Diversity = atoi(record[9])
	d.LandSeed = record[10]
	elapsed, err := strconv.ParseInt(record[11], 10, 64)
	errs = append(errs, err)
	d.ElapsedMS = elapsed
	d.CPUPercent = atof(record[12])

	for _, err := range errs {
		if err != nil {
			return model.GenerationDiagnostics{}, err
		}
	}
	return d, nil
}

// Summary aggregates a diagnostics history.
type Summary struct {
	Generations    int
	FirstGen       int
	LastGen        int
	BestScore      uint64
	BestGeneration int
	FinalMean      float64
	TotalFailed    int
	TotalElapsedMS int64
}

func Summarize(history []model.GenerationDiagnostics) Summary {
	if len(history) == 0 {
		return Summary{}
	}
	s := Summary{
		Generations:    len(history),
		FirstGen:       history[0].Generation,
		LastGen:        history[len(history)-1].Generation,
		BestScore:      history[0].BestScore,
		BestGeneration: history[0].Generation,
		FinalMean:      history[len(history)-1].MeanScore,
	}
	for _, d := range history {
		if d.BestScore > s.BestScore {
			s.BestScore = d.BestScore
			s.BestGeneration = d.Generation
		}
		s.TotalFailed += d.Failed
		s.TotalElapsedMS += d.ElapsedMS
	}
	return s
}
