// Package pipeline validates, de-duplicates and persists collected books.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aluiziolira/go-libraff-books/models"
	"github.com/aluiziolira/go-libraff-books/parser"
)

// Validation reasons reported in Snapshot.Validation.
const (
	ReasonInvalid   = "invalid_record"
	ReasonDuplicate = "duplicate_product_id"
)

var (
	// ErrEmptyCatalog is returned when asked to persist zero books.
	ErrEmptyCatalog = errors.New("pipeline: catalog is empty")
)

// OutputWriter defines the interface for catalog output.
type OutputWriter interface {
	Write(books []*models.Book) error
	Close() error
	Validate() error
}

// Pipeline accumulates books in first-seen order, keyed by product id.
// Later books with an id already seen are dropped.
type Pipeline struct {
	mu      sync.Mutex
	books   []*models.Book
	seen    map[string]struct{}
	metrics metrics
}

// NewPipeline returns an empty pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{
		seen:    make(map[string]struct{}),
		metrics: newMetrics(),
	}
}

// Process accepts a batch and returns how many books were kept.
func (p *Pipeline) Process(books ...*models.Book) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	kept := 0
	for _, book := range books {
		p.metrics.received++
		if err := parser.ValidateBook(book); err != nil {
			p.metrics.validation[ReasonInvalid]++
			slog.Debug("dropping invalid record", slog.Any("error", err))
			continue
		}
		if _, ok := p.seen[book.ProductID]; ok {
			p.metrics.validation[ReasonDuplicate]++
			continue
		}
		p.seen[book.ProductID] = struct{}{}
		p.books = append(p.books, book)
		kept++
	}
	return kept
}

// Len returns the number of unique books held.
func (p *Pipeline) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.books)
}

// Books returns the unique books in first-seen order.
func (p *Pipeline) Books() []*models.Book {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*models.Book, len(p.books))
	copy(out, p.books)
	return out
}

// Flush writes every held book to w and closes it. An empty pipeline
// returns ErrEmptyCatalog before w sees any data.
func (p *Pipeline) Flush(w OutputWriter) error {
	books := p.Books()
	if len(books) == 0 {
		return ErrEmptyCatalog
	}
	if err := w.Write(books); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close catalog: %w", err)
	}
	return w.Validate()
}

// Snapshot is a point-in-time copy of the pipeline counters.
type Snapshot struct {
	Received   int
	Processed  int
	Validation map[string]int
}

// GetMetrics returns a snapshot of the internal counters.
func (p *Pipeline) GetMetrics() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	validation := make(map[string]int, len(p.metrics.validation))
	for k, v := range p.metrics.validation {
		validation[k] = v
	}
	return Snapshot{
		Received:   p.metrics.received,
		Processed:  len(p.books),
		Validation: validation,
	}
}

type metrics struct {
	received   int
	validation map[string]int
}

func newMetrics() metrics {
	return metrics{validation: make(map[string]int)}
}
