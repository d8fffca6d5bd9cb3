// Package chart draws monthly summaries as PNG line charts.
package chart

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

const (
	width  = 8 * vg.Inch
	height = 6 * vg.Inch
)

// PNGRenderer writes charts into Dir as chart_YYYY-MM.png.
type PNGRenderer struct {
	Dir string
}

func NewPNGRenderer(dir string) *PNGRenderer {
	return &PNGRenderer{Dir: dir}
}

// FileName is the chart file name for a month in YYYY-MM form.
func FileName(month string) string {
	return "chart_" + month + ".png"
}

// Path is where the chart for month is written.
func (r *PNGRenderer) Path(month string) string {
	return filepath.Join(r.Dir, FileName(month))
}

// Render draws s and writes it over any previous chart for the same month.
func (r *PNGRenderer) Render(ctx context.Context, s core.MonthlySummary) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p, err := newPlot(s)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create chart dir %s: %w", r.Dir, err)
	}
	path := r.Path(s.Month)
	if err := p.Save(width, height, path); err != nil {
		return "", fmt.Errorf("save chart %s: %w", path, err)
	}

	slog.InfoContext(ctx, "Chart rendered",
		applog.FieldComponent, applog.ComponentChart,
		applog.FieldMonth, s.Month,
		applog.FieldFile, path)
	return path, nil
}

// WriteTo encodes the chart for s as PNG into w.
func WriteTo(w io.Writer, s core.MonthlySummary) error {
	p, err := newPlot(s)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("encode chart: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

func newPlot(s core.MonthlySummary) (*plot.Plot, error) {
	if len(s.Categories) == 0 {
		return nil, fmt.Errorf("chart for %s has no categories", s.Month)
	}

	p := plot.New()
	p.Title.Text = s.Title()
	p.X.Label.Text = "Category"
	p.Y.Label.Text = "Amount"
	p.Y.Min = 0
	p.Add(plotter.NewGrid())

	series := []struct {
		name   string
		values []float64
	}{
		{"Expenses", s.Expenses},
		{"Incomes", s.Incomes},
	}
	for i, sr := range series {
		line, points, err := plotter.NewLinePoints(toXYs(sr.values))
		if err != nil {
			return nil, fmt.Errorf("%s series: %w", sr.name, err)
		}
		line.Color = plotutil.Color(i)
		points.Color = plotutil.Color(i)
		points.Shape = plotutil.Shape(i)
		p.Add(line, points)
		p.Legend.Add(sr.name, line, points)
	}
	p.Legend.Top = true
	p.NominalX(s.Categories...)
	return p, nil
}

// toXYs places value i at x = i, matching NominalX tick positions.
func toXYs(values []float64) plotter.XYs {
	pts := make(plotter.XYs, len(values))
	for i, v := range values {
		pts[i].X = float64(i)
		pts[i].Y = v
	}
	return pts
}
