package charts

import (
	"fmt"
	"os"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/aluiziolira/go-libraff-books/report"
)

// MainCategories draws the broad category split as a pie, each slice
// labelled with its share and count.
func (r *Renderer) MainCategories(path string, counts []report.Count) error {
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	if total == 0 {
		return ErrNoData
	}

	values := make([]chart.Value, 0, len(counts))
	for _, c := range counts {
		pct := float64(c.Count) / float64(total) * 100
		values = append(values, chart.Value{
			Value: float64(c.Count),
			Label: r.printer.Sprintf("%s %.1f%% (%d)", c.Label, pct, c.Count),
		})
	}

	pie := chart.PieChart{
		Title:  "Catalog Distribution by Main Category",
		Width:  1200,
		Height: 1200,
		Values: values,
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := pie.Render(chart.PNG, f); err != nil {
		f.Close()
		return fmt.Errorf("render pie: %w", err)
	}
	return f.Close()
}
