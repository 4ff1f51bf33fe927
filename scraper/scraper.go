package scraper

import (
	"bytes"
	"compress/zlib"
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aluiziolira/go-libraff-books/config"
	"github.com/aluiziolira/go-libraff-books/models"
	"github.com/aluiziolira/go-libraff-books/parser"
	"github.com/aluiziolira/go-libraff-books/pipeline"
	"github.com/andybalholm/brotli"
	"github.com/gocolly/colly/v2"
	"github.com/klauspost/compress/zstd"
)

// colly context keys
const (
	ctxStart     = "start"
	ctxBody      = "body"
	ctxStatus    = "status"
	ctxDecodeErr = "decode_err"
)

// Scraper walks the paginated catalog endpoint one page at a time.
type Scraper struct {
	cfg       *config.CollectorConfig
	collector *colly.Collector
	headers   http.Header
	Metrics   *Metrics

	mu           sync.Mutex
	pageCount    int
	emptyPages   int
	failedPages  []int
	errorsByType map[string]int

	handlersOnce sync.Once
}

// NewScraper builds a sequential scraper configured from cfg.
func NewScraper(cfg *config.CollectorConfig) (*Scraper, error) {
	parsed, err := url.Parse(fmt.Sprintf(cfg.BaseURL, 1))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("base url must include a host")
	}

	collector := colly.NewCollector(
		colly.AllowedDomains(parsed.Hostname()),
		colly.AllowURLRevisit(),
		colly.MaxBodySize(0),
	)
	collector.SetRequestTimeout(cfg.Timeout)
	collector.IgnoreRobotsTxt = true
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	headers := make(http.Header, len(cfg.Headers))
	for key, value := range cfg.Headers {
		headers.Set(key, value)
	}

	s := &Scraper{
		cfg:          cfg,
		collector:    collector,
		headers:      headers,
		Metrics:      NewMetrics(),
		errorsByType: make(map[string]int),
	}
	s.configureHandlers()
	return s, nil
}

// PageURL renders the endpoint for page with the fixed query parameters.
func (s *Scraper) PageURL(page int) string {
	u, err := url.Parse(fmt.Sprintf(s.cfg.BaseURL, page))
	if err != nil {
		return fmt.Sprintf(s.cfg.BaseURL, page)
	}
	q := u.Query()
	for key, value := range s.cfg.Params {
		q.Set(key, value)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// FetchPage issues one request. Failures never escape: they are logged,
// counted and returned on the page with an empty body.
func (s *Scraper) FetchPage(ctx context.Context, page int) models.CatalogPage {
	result := models.CatalogPage{Number: page}
	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	target := s.PageURL(page)
	cctx := colly.NewContext()
	err := s.collector.Request(http.MethodGet, target, nil, cctx, s.headers.Clone())

	s.mu.Lock()
	s.pageCount++
	s.mu.Unlock()

	if err != nil {
		status, _ := cctx.GetAny(ctxStatus).(int)
		result.Err = classifyError(err, status)
		s.recordFailure(page, target, result.Err)
		return result
	}

	if decodeErr, ok := cctx.GetAny(ctxDecodeErr).(error); ok {
		result.Err = decodeError(decodeErr)
		s.recordFailure(page, target, result.Err)
		return result
	}

	body, _ := cctx.GetAny(ctxBody).([]byte)
	if !parser.IsJSON(body) {
		result.Err = decodeError(errNotJSON)
		s.recordFailure(page, target, result.Err)
		return result
	}

	result.Body = body
	return result
}

// Pages lazily fetches pages from 1 upward and yields the books extracted
// from each. The sequence ends after MaxEmptyPages consecutive pages without
// books, or when ctx is done. Every handled page, the last one included, is
// followed by a full PageDelay pause before anything else happens.
func (s *Scraper) Pages(ctx context.Context) iter.Seq2[int, []*models.Book] {
	return func(yield func(int, []*models.Book) bool) {
		streak := emptyStreak{limit: s.cfg.MaxEmptyPages}
		for page := 1; ; page++ {
			if ctx.Err() != nil {
				return
			}

			fetched := s.FetchPage(ctx, page)
			if ctx.Err() != nil {
				return
			}

			books := parser.ExtractBooks(fetched.Body)
			if len(books) == 0 {
				s.mu.Lock()
				s.emptyPages++
				s.mu.Unlock()
			}
			done := streak.observe(len(books))
			s.Metrics.PageHandled(page, len(books), streak.run, fetched.Err != nil)

			if !yield(page, books) {
				return
			}
			if !pause(ctx, s.cfg.PageDelay) || done {
				return
			}
		}
	}
}

// pause sleeps for d measured from now, returning false if ctx ends first.
func pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Run drains Pages into p and summarises the collection. A cancelled ctx
// stops the loop early; the books gathered so far stay in p and ctx.Err()
// is returned alongside the partial result.
func (s *Scraper) Run(ctx context.Context, p *pipeline.Pipeline) (*models.CollectionResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	slog.Info("starting collection", slog.String("endpoint", s.PageURL(1)))
	for page, books := range s.Pages(ctx) {
		if len(books) == 0 {
			slog.Info("no books found", slog.Int("page", page))
			continue
		}
		p.Process(books...)
		slog.Info("page collected",
			slog.Int("page", page),
			slog.Int("found", len(books)),
			slog.Int("total", p.Len()),
		)
	}

	snapshot := p.GetMetrics()
	result := &models.CollectionResult{
		Books:        p.Books(),
		StartTime:    start,
		EndTime:      time.Now(),
		RawCount:     snapshot.Received,
		Duplicates:   snapshot.Validation[pipeline.ReasonDuplicate],
		Invalid:      snapshot.Validation[pipeline.ReasonInvalid],
		FailedPages:  s.snapshotFailedPages(),
		ErrorsByType: s.snapshotErrors(),
	}
	s.mu.Lock()
	result.PageCount = s.pageCount
	result.EmptyPages = s.emptyPages
	s.mu.Unlock()

	slog.Info("collection finished",
		slog.Int("pages", result.PageCount),
		slog.Int("books", len(result.Books)),
		slog.Int("duplicates", result.Duplicates),
	)
	return result, ctx.Err()
}

func (s *Scraper) configureHandlers() {
	s.handlersOnce.Do(func() {
		s.collector.OnRequest(func(r *colly.Request) {
			r.Ctx.Put(ctxStart, time.Now())
			slog.Debug("requesting page", slog.String("url", r.URL.String()))
		})

		s.collector.OnResponse(func(r *colly.Response) {
			if start, ok := r.Ctx.GetAny(ctxStart).(time.Time); ok {
				s.Metrics.ObserveFetch(time.Since(start))
			}
			encoding := ""
			if r.Headers != nil {
				encoding = r.Headers.Get("Content-Encoding")
			}
			body, err := decodeBody(encoding, r.Body)
			if err != nil {
				r.Ctx.Put(ctxDecodeErr, err)
				return
			}
			r.Ctx.Put(ctxBody, body)
		})

		s.collector.OnError(func(r *colly.Response, err error) {
			if r == nil {
				return
			}
			if r.Ctx != nil {
				r.Ctx.Put(ctxStatus, r.StatusCode)
			}
		})
	})
}

func (s *Scraper) recordFailure(page int, target string, err error) {
	category := errorTypeLabel(err)

	s.mu.Lock()
	s.errorsByType[category]++
	s.failedPages = append(s.failedPages, page)
	s.mu.Unlock()

	s.Metrics.PageFailed(category)
	slog.Warn("page fetch failed",
		slog.Int("page", page),
		slog.String("url", target),
		slog.String("category", category),
		slog.Any("error", err),
	)
}

func (s *Scraper) snapshotFailedPages() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.failedPages))
	copy(out, s.failedPages)
	sort.Ints(out)
	return out
}

func (s *Scraper) snapshotErrors() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.errorsByType))
	for k, v := range s.errorsByType {
		out[k] = v
	}
	return out
}

// emptyStreak tracks consecutive pages without records.
type emptyStreak struct {
	limit int
	run   int
}

// observe records a page and reports whether the loop should stop.
func (e *emptyStreak) observe(records int) bool {
	if records > 0 {
		e.run = 0
		return false
	}
	e.run++
	return e.run >= e.limit
}

// decodeBody undoes the encodings we advertise but colly leaves alone;
// colly already inflates gzip itself.
func decodeBody(encoding string, body []byte) ([]byte, error) {
	var reader io.Reader
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "br":
		reader = brotli.NewReader(bytes.NewReader(body))
	case "zstd":
		dec, err := zstd.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		defer dec.Close()
		reader = dec
	case "deflate":
		zr, err := zlib.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("deflate reader: %w", err)
		}
		defer zr.Close()
		reader = zr
	default:
		return body, nil
	}

	out, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("decode %s body: %w", encoding, err)
	}
	return out, nil
}
