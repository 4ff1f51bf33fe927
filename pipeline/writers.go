package pipeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/aluiziolira/go-libraff-books/models"
)

// CSVWriter writes the catalog to a temporary file beside the target and
// renames it into place on Close, so an aborted run leaves the previous
// catalog untouched.
type CSVWriter struct {
	path   string
	file   *os.File
	writer *csv.Writer
	rows   int
	closed bool
	mu     sync.Mutex
}

// NewCSVWriter initialises a CSV writer and writes the header row.
func NewCSVWriter(filename string) (*CSVWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.CreateTemp(filepath.Dir(filename), "."+filepath.Base(filename)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create csv file: %w", err)
	}

	writer := csv.NewWriter(f)
	if err := writer.Write(models.Columns); err != nil {
		discard(f)
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		discard(f)
		return nil, fmt.Errorf("flush csv header: %w", err)
	}

	return &CSVWriter{
		path:   filename,
		file:   f,
		writer: writer,
	}, nil
}

// Write appends books to the CSV output.
func (cw *CSVWriter) Write(books []*models.Book) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.closed {
		return errors.New("csv writer is closed")
	}
	for _, book := range books {
		if err := cw.writer.Write(book.Record()); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
		cw.rows++
	}
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv records: %w", err)
	}
	return nil
}

// Close flushes the temporary file and moves it over the target path.
func (cw *CSVWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.closed {
		return nil
	}
	cw.closed = true

	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		discard(cw.file)
		return fmt.Errorf("flush csv writer: %w", err)
	}
	if err := cw.file.Chmod(0o644); err != nil {
		discard(cw.file)
		return fmt.Errorf("chmod csv file: %w", err)
	}
	if err := cw.file.Close(); err != nil {
		os.Remove(cw.file.Name())
		return fmt.Errorf("close csv file: %w", err)
	}
	if err := os.Rename(cw.file.Name(), cw.path); err != nil {
		os.Remove(cw.file.Name())
		return fmt.Errorf("move csv into %s: %w", cw.path, err)
	}
	return nil
}

// Abort drops the temporary file without replacing the target.
func (cw *CSVWriter) Abort() {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	if cw.closed {
		return
	}
	cw.closed = true
	discard(cw.file)
}

// Validate ensures the renamed file exists and holds at least one data row.
func (cw *CSVWriter) Validate() error {
	cw.mu.Lock()
	rows := cw.rows
	cw.mu.Unlock()

	info, err := os.Stat(cw.path)
	if err != nil {
		return fmt.Errorf("stat csv file: %w", err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("csv file is empty")
	}
	if rows == 0 {
		return fmt.Errorf("csv file has no data rows")
	}
	return nil
}

// Rows returns the number of data rows written so far.
func (cw *CSVWriter) Rows() int {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return cw.rows
}

// Persist writes books to path as CSV. Zero books is refused with
// ErrEmptyCatalog and the file system is not touched.
func Persist(books []*models.Book, path string) error {
	if len(books) == 0 {
		return ErrEmptyCatalog
	}

	p := NewPipeline()
	p.Process(books...)

	writer, err := NewCSVWriter(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if err := p.Flush(writer); err != nil {
		writer.Abort()
		return fmt.Errorf("persist %s: %w", path, err)
	}
	return nil
}

func discard(f *os.File) {
	f.Close()
	os.Remove(f.Name())
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
