package scraper

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"

	"github.com/aluiziolira/go-libraff-books/pipeline"
)

// gather flattens the registry into "name{label=value}" -> value. Histograms
// report their sample count.
func gather(t *testing.T, m *Metrics) map[string]float64 {
	t.Helper()
	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	out := make(map[string]float64)
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			var labels []string
			for _, lp := range metric.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			sort.Strings(labels)
			key := mf.GetName()
			if len(labels) > 0 {
				key += "{" + strings.Join(labels, ",") + "}"
			}
			switch {
			case metric.GetCounter() != nil:
				out[key] = metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				out[key] = metric.GetGauge().GetValue()
			case metric.GetHistogram() != nil:
				out[key] = float64(metric.GetHistogram().GetSampleCount())
			}
		}
	}
	return out
}

func TestMetricsTrackCollection(t *testing.T) {
	cs := &catalogServer{pages: map[int]httpmock.Responder{
		1: booksOnPage(1, 2),
		2: httpmock.NewStringResponder(http.StatusNotFound, "missing"),
		4: booksOnPage(4, 1),
	}}
	s := newTestScraper(t, testConfig(), cs)

	if _, err := s.Run(context.Background(), pipeline.NewPipeline()); err != nil {
		t.Fatalf("run: %v", err)
	}

	got := gather(t, s.Metrics)
	want := map[string]float64{
		"libraff_catalog_pages_total{result=books}":          2,
		"libraff_catalog_pages_total{result=empty}":          4,
		"libraff_catalog_pages_total{result=failed}":         1,
		"libraff_catalog_books_extracted_total":              3,
		"libraff_catalog_fetch_errors_total{kind=not_found}": 1,
		"libraff_catalog_current_page":                       7,
		"libraff_catalog_empty_streak":                       3,
		"libraff_catalog_page_fetch_seconds":                 6,
	}
	for key, value := range want {
		if got[key] != value {
			t.Errorf("%s = %v, want %v", key, got[key], value)
		}
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveFetch(0)
	m.PageFailed("timeout")
	m.PageHandled(1, 3, 0, false)
}
