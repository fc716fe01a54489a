package stats

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"dinoevo/internal/model"
)

// NewHistoryPlot draws best and mean score against generation.
func NewHistoryPlot(history []model.GenerationDiagnostics, title string) (*plot.Plot, error) {
	if len(history) == 0 {
		return nil, fmt.Errorf("no generations to plot")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Generation"
	p.Y.Label.Text = "Score"

	best := make(plotter.XYs, len(history))
	mean := make(plotter.XYs, len(history))
	for i, d := range history {
		best[i].X = float64(d.Generation)
		best[i].Y = float64(d.BestScore)
		mean[i].X = float64(d.Generation)
		mean[i].Y = d.MeanScore
	}

	bestLine, err := plotter.NewLine(best)
	if err != nil {
		return nil, err
	}
	meanLine, err := plotter.NewLine(mean)
	if err != nil {
		return nil, err
	}
	meanLine.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(plotter.NewGrid(), bestLine, meanLine)
	p.Legend.Add("best", bestLine)
	p.Legend.Add("mean", meanLine)
	p.Legend.Top = true
	p.Legend.Left = true
	return p, nil
}

// PlotHistory saves the history plot to outPath; the image format follows
// the file extension.
func PlotHistory(history []model.GenerationDiagnostics, title, outPath string) error {
	p, err := NewHistoryPlot(history, title)
	if err != nil {
		return err
	}
	return p.Save(6*vg.Inch, 4*vg.Inch, outPath)
}

// WriteHistoryPNG renders the history plot as PNG to w.
func WriteHistoryPNG(w io.Writer, history []model.GenerationDiagnostics, title string) error {
	p, err := NewHistoryPlot(history, title)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(6*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
