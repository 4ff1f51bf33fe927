package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Page results recorded by Metrics.
const (
	resultBooks  = "books"
	resultEmpty  = "empty"
	resultFailed = "failed"
)

// Metrics exposes collection progress on a private registry, served by the
// collector's optional metrics endpoint.
type Metrics struct {
	Registry *prometheus.Registry

	pages       *prometheus.CounterVec
	fetchTime   prometheus.Histogram
	books       prometheus.Counter
	fetchErrors *prometheus.CounterVec
	currentPage prometheus.Gauge
	emptyStreak prometheus.Gauge
}

// NewMetrics registers the collector metrics on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "libraff_catalog_pages_total",
			Help: "Catalog pages handled, by result: books, empty or failed.",
		}, []string{"result"}),
		fetchTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "libraff_catalog_page_fetch_seconds",
			Help: "Round trip of one catalog page request, pause excluded.",
			// pages are large JSON payloads; the request timeout defaults to 30s
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
		books: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "libraff_catalog_books_extracted_total",
			Help: "Book records extracted from catalog pages, duplicates included.",
		}),
		fetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "libraff_catalog_fetch_errors_total",
			Help: "Failed page fetches by kind (timeout, not_found, decode, ...).",
		}, []string{"kind"}),
		currentPage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "libraff_catalog_current_page",
			Help: "Number of the catalog page handled last.",
		}),
		emptyStreak: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "libraff_catalog_empty_streak",
			Help: "Consecutive pages without books; collection stops at max_empty_pages.",
		}),
	}
	m.Registry.MustRegister(m.pages, m.fetchTime, m.books, m.fetchErrors, m.currentPage, m.emptyStreak)
	return m
}

// ObserveFetch records one request round trip.
func (m *Metrics) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.fetchTime.Observe(d.Seconds())
}

// PageFailed counts a page whose fetch failed with kind.
func (m *Metrics) PageFailed(kind string) {
	if m == nil {
		return
	}
	m.pages.WithLabelValues(resultFailed).Inc()
	m.fetchErrors.WithLabelValues(kind).Inc()
}

// PageHandled records the books found on page and the resulting streak of
// empty pages. Failed pages are counted by PageFailed instead of as empty.
func (m *Metrics) PageHandled(page, books, streak int, failed bool) {
	if m == nil {
		return
	}
	m.currentPage.Set(float64(page))
	m.emptyStreak.Set(float64(streak))
	switch {
	case books > 0:
		m.pages.WithLabelValues(resultBooks).Inc()
		m.books.Add(float64(books))
	case !failed:
		m.pages.WithLabelValues(resultEmpty).Inc()
	}
}
