// Package charts renders report aggregates to PNG files.
package charts

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/aluiziolira/go-libraff-books/report"
)

// Output file names, in render order.
const (
	FilePriceDistribution = "1_price_distribution.png"
	FileTopCategories     = "2_top_categories.png"
	FileStockAvailability = "3_stock_availability.png"
	FileMainCategories    = "4_main_categories.png"
	FileAvgPrice          = "5_avg_price_by_category.png"
	FileInventoryValue    = "6_inventory_value_by_category.png"
)

// ErrNoData is returned for a chart with nothing to draw.
var ErrNoData = errors.New("charts: no data")

// Job renders one chart to path.
type Job struct {
	Name   string
	File   string
	Render func(path string) error
}

// Renderer turns aggregates into chart jobs.
type Renderer struct {
	Currency string
	printer  *message.Printer
}

// NewRenderer returns a Renderer labelling amounts in currency.
func NewRenderer(currency string) *Renderer {
	return &Renderer{Currency: currency, printer: message.NewPrinter(language.English)}
}

// Jobs returns the six chart jobs for a. A job whose aggregation failed
// reports that failure when run.
func (r *Renderer) Jobs(a *report.Aggregates) []Job {
	guard := func(name string, render func(path string) error) func(string) error {
		return func(path string) error {
			if err := a.Err(name); err != nil {
				return err
			}
			return render(path)
		}
	}

	return []Job{
		{
			Name: report.AggPriceDistribution,
			File: FilePriceDistribution,
			Render: guard(report.AggPriceDistribution, func(path string) error {
				return r.PriceDistribution(path, a.PriceBuckets)
			}),
		},
		{
			Name: report.AggTopCategories,
			File: FileTopCategories,
			Render: guard(report.AggTopCategories, func(path string) error {
				return r.TopCategories(path, a.TopCategories)
			}),
		},
		{
			Name: report.AggStockAvailability,
			File: FileStockAvailability,
			Render: guard(report.AggStockAvailability, func(path string) error {
				return r.StockAvailability(path, a.StockBands)
			}),
		},
		{
			Name: report.AggMainCategories,
			File: FileMainCategories,
			Render: guard(report.AggMainCategories, func(path string) error {
				return r.MainCategories(path, a.MainCategories)
			}),
		},
		{
			Name: report.AggAvgPrice,
			File: FileAvgPrice,
			Render: guard(report.AggAvgPrice, func(path string) error {
				return r.AveragePrice(path, a.AveragePrice)
			}),
		},
		{
			Name: report.AggInventoryValue,
			File: FileInventoryValue,
			Render: guard(report.AggInventoryValue, func(path string) error {
				return r.InventoryValue(path, a.InventoryValue)
			}),
		},
	}
}

// RenderAll runs every job into dir. A failing job is logged and the rest
// still run; the returned error joins all failures.
func RenderAll(dir string, jobs []Job) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	var errs []error
	for i, job := range jobs {
		path := filepath.Join(dir, job.File)
		slog.Info("rendering chart",
			slog.Int("step", i+1),
			slog.Int("total", len(jobs)),
			slog.String("chart", job.Name))

		if err := job.Render(path); err != nil {
			slog.Error("chart failed",
				slog.String("chart", job.Name),
				slog.Any("error", err))
			errs = append(errs, fmt.Errorf("%s: %w", job.File, err))
			continue
		}
		slog.Info("chart saved", slog.String("path", path))
	}
	return errors.Join(errs...)
}
