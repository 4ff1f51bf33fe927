package charts

import (
	"fmt"
	"image/color"
	"math"
	"slices"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"

	"github.com/aluiziolira/go-libraff-books/report"
)

var (
	colorPrice    = hex(0x2E86AB)
	colorCategory = hex(0xA23B72)
	colorAvgPrice = hex(0xF18F01)
	colorValue    = hex(0x06A77D)

	// High, Good, Medium, Low, Out.
	stockColors = []color.Color{hex(0x118AB2), hex(0x06D6A0), hex(0xFCBF49), hex(0xF77F00), hex(0xE63946)}
)

const (
	barWidth    = 20
	labelMargin = 1.15
)

// hex returns the 0xRRGGBB colour at 80% opacity.
func hex(v uint32) color.Color {
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xcc}
}

// series is one bar per entry with its label text.
type series struct {
	names  []string
	values []float64
	labels []string
	colors []color.Color // optional, one per bar
}

func (s series) max() float64 {
	m := 0.0
	for _, v := range s.values {
		m = math.Max(m, v)
	}
	return m
}

// reversed flips the series so the first entry ends up on top of a
// horizontal chart.
func (s series) reversed() series {
	out := series{
		names:  slices.Clone(s.names),
		values: slices.Clone(s.values),
		labels: slices.Clone(s.labels),
		colors: slices.Clone(s.colors),
	}
	slices.Reverse(out.names)
	slices.Reverse(out.values)
	slices.Reverse(out.labels)
	slices.Reverse(out.colors)
	return out
}

type barOptions struct {
	title      string
	valueLabel string
	catLabel   string
	horizontal bool
	fill       color.Color
	width      vg.Length
	height     vg.Length
}

func renderBars(path string, opts barOptions, s series) error {
	if len(s.values) == 0 {
		return ErrNoData
	}
	if opts.horizontal {
		s = s.reversed()
	}

	p := plot.New()
	p.Title.Text = opts.title
	p.Title.Padding = vg.Points(12)

	// One bar chart per bar so every bar can carry its own colour.
	for i, v := range s.values {
		bars, err := plotter.NewBarChart(plotter.Values{v}, vg.Points(barWidth))
		if err != nil {
			return fmt.Errorf("bar %q: %w", s.names[i], err)
		}
		bars.XMin = float64(i)
		bars.Horizontal = opts.horizontal
		bars.Color = opts.fill
		if len(s.colors) == len(s.values) {
			bars.Color = s.colors[i]
		}
		bars.LineStyle.Width = vg.Points(0.5)
		p.Add(bars)
	}

	xys := make(plotter.XYs, len(s.values))
	for i, v := range s.values {
		if opts.horizontal {
			xys[i] = plotter.XY{X: v, Y: float64(i)}
		} else {
			xys[i] = plotter.XY{X: float64(i), Y: v}
		}
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: s.labels})
	if err != nil {
		return fmt.Errorf("labels: %w", err)
	}
	for i := range labels.TextStyle {
		if opts.horizontal {
			labels.TextStyle[i].XAlign = text.XLeft
			labels.TextStyle[i].YAlign = text.YCenter
		} else {
			labels.TextStyle[i].XAlign = text.XCenter
			labels.TextStyle[i].YAlign = text.YBottom
		}
	}
	if opts.horizontal {
		labels.Offset = vg.Point{X: vg.Points(4)}
	} else {
		labels.Offset = vg.Point{Y: vg.Points(2)}
	}
	p.Add(labels)

	top := s.max() * labelMargin
	if top == 0 {
		top = 1
	}
	if opts.horizontal {
		p.NominalY(s.names...)
		p.X.Label.Text = opts.valueLabel
		p.Y.Label.Text = opts.catLabel
		p.X.Min = 0
		p.X.Max = top
	} else {
		p.NominalX(s.names...)
		p.X.Label.Text = opts.catLabel
		p.Y.Label.Text = opts.valueLabel
		p.X.Tick.Label.Rotation = math.Pi / 4
		p.X.Tick.Label.XAlign = text.XRight
		p.X.Tick.Label.YAlign = text.YCenter
		p.Y.Min = 0
		p.Y.Max = top
	}

	if err := p.Save(opts.width, opts.height, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// PriceDistribution draws the price buckets as vertical bars.
func (r *Renderer) PriceDistribution(path string, buckets []report.Bucket) error {
	var s series
	for _, b := range buckets {
		s.names = append(s.names, b.Label)
		s.values = append(s.values, float64(b.Count))
		s.labels = append(s.labels, r.printer.Sprintf("%d", b.Count))
	}
	return renderBars(path, barOptions{
		title:      "Book Price Distribution - Most Books Priced Under 15 " + r.Currency,
		valueLabel: "Number of Books",
		catLabel:   fmt.Sprintf("Price Range (%s)", r.Currency),
		fill:       colorPrice,
		width:      12 * vg.Inch,
		height:     7 * vg.Inch,
	}, s)
}

// TopCategories draws category counts as horizontal bars, largest on top.
func (r *Renderer) TopCategories(path string, counts []report.Count) error {
	s := r.countSeries(counts)
	return renderBars(path, barOptions{
		title:      fmt.Sprintf("Top %d Book Categories", len(counts)),
		valueLabel: "Number of Books",
		catLabel:   "Category",
		horizontal: true,
		fill:       colorCategory,
		width:      14 * vg.Inch,
		height:     8 * vg.Inch,
	}, s)
}

// StockAvailability draws the stock bands in their fixed order, each in its
// own colour, labelled with count and share.
func (r *Renderer) StockAvailability(path string, bands []report.Band) error {
	var s series
	for i, b := range bands {
		s.names = append(s.names, b.Label)
		s.values = append(s.values, float64(b.Count))
		s.labels = append(s.labels, r.printer.Sprintf("%d (%.1f%%)", b.Count, b.Percent))
		s.colors = append(s.colors, stockColors[i%len(stockColors)])
	}
	return renderBars(path, barOptions{
		title:      "Inventory Health - Stock Availability Distribution",
		valueLabel: "Number of Books",
		catLabel:   "Stock Status",
		horizontal: true,
		width:      12 * vg.Inch,
		height:     7 * vg.Inch,
	}, s)
}

// AveragePrice draws mean price per category, highest on top.
func (r *Renderer) AveragePrice(path string, amounts []report.Amount) error {
	var s series
	for _, a := range amounts {
		s.names = append(s.names, a.Label)
		s.values = append(s.values, a.Value)
		s.labels = append(s.labels, r.printer.Sprintf("%.2f %s", a.Value, r.Currency))
	}
	return renderBars(path, barOptions{
		title:      fmt.Sprintf("Top %d Highest-Priced Categories", len(amounts)),
		valueLabel: fmt.Sprintf("Average Price (%s)", r.Currency),
		catLabel:   "Category",
		horizontal: true,
		fill:       colorAvgPrice,
		width:      12 * vg.Inch,
		height:     8 * vg.Inch,
	}, s)
}

// InventoryValue draws summed stock value per category in thousands.
func (r *Renderer) InventoryValue(path string, amounts []report.Amount) error {
	var s series
	for _, a := range amounts {
		k := a.Value / 1000
		s.names = append(s.names, a.Label)
		s.values = append(s.values, k)
		s.labels = append(s.labels, r.printer.Sprintf("%.1fK", k))
	}
	return renderBars(path, barOptions{
		title:      fmt.Sprintf("Top %d Categories by Inventory Value", len(amounts)),
		valueLabel: fmt.Sprintf("Total Inventory Value (Thousands %s)", r.Currency),
		catLabel:   "Category",
		horizontal: true,
		fill:       colorValue,
		width:      12 * vg.Inch,
		height:     8 * vg.Inch,
	}, s)
}

func (r *Renderer) countSeries(counts []report.Count) series {
	var s series
	for _, c := range counts {
		s.names = append(s.names, c.Label)
		s.values = append(s.values, float64(c.Count))
		s.labels = append(s.labels, r.printer.Sprintf("%d", c.Count))
	}
	return s
}
