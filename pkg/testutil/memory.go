package testutil

import (
	"context"
	"io"
	"sync"

	"github.com/ajitpratap0/colconv/pkg/models"
)

// MemorySource is a source serving fixed rows.
type MemorySource struct {
	header *models.Header
	rows   [][]any
	next   int

	// OpenErr and ReadErr make Open and Read fail. ReadErr is returned
	// once FailAt rows were read.
	OpenErr error
	ReadErr error
	FailAt  int

	Opened bool
	Closed bool
}

// NewMemorySource creates a source with the given header and rows.
func NewMemorySource(header *models.Header, rows ...[]any) *MemorySource {
	return &MemorySource{header: header, rows: rows}
}

// Open implements core.Source.
func (s *MemorySource) Open(ctx context.Context) error {
	if s.OpenErr != nil {
		return s.OpenErr
	}
	s.Opened = true
	return nil
}

// Header implements core.Source.
func (s *MemorySource) Header() *models.Header {
	return s.header
}

// Read implements core.Source.
func (s *MemorySource) Read(ctx context.Context) ([]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.ReadErr != nil && s.next >= s.FailAt {
		return nil, s.ReadErr
	}
	if s.next >= len(s.rows) {
		return nil, io.EOF
	}
	values := s.rows[s.next]
	s.next++
	return values, nil
}

// Close implements core.Source.
func (s *MemorySource) Close(ctx context.Context) error {
	s.Closed = true
	return nil
}

// MemoryDestination keeps a copy of every row written to it.
type MemoryDestination struct {
	mu      sync.Mutex
	header  *models.Header
	cells   [][]models.Cell
	batches int

	// WriteErr makes Write fail.
	WriteErr error

	Closed bool
}

// NewMemoryDestination creates an empty destination.
func NewMemoryDestination() *MemoryDestination {
	return &MemoryDestination{}
}

// Open implements core.Destination.
func (d *MemoryDestination) Open(ctx context.Context, header *models.Header) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.header = header
	return nil
}

// Write implements core.Destination. Rows are copied since the caller
// recycles them.
func (d *MemoryDestination) Write(ctx context.Context, rows []*models.Row) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.WriteErr != nil {
		return d.WriteErr
	}
	for _, r := range rows {
		cells := make([]models.Cell, r.Len())
		for i := range cells {
			cells[i] = r.Cell(i)
		}
		d.cells = append(d.cells, cells)
	}
	d.batches++
	return nil
}

// Close implements core.Destination.
func (d *MemoryDestination) Close(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Closed = true
	return nil
}

// Header returns the header passed to Open.
func (d *MemoryDestination) Header() *models.Header {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.header
}

// Cells returns the written rows.
func (d *MemoryDestination) Cells() [][]models.Cell {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cells
}

// Values returns the written cell values.
func (d *MemoryDestination) Values() [][]any {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([][]any, len(d.cells))
	for i, row := range d.cells {
		out[i] = make([]any, len(row))
		for j, c := range row {
			out[i][j] = c.Value
		}
	}
	return out
}

// Batches returns the number of Write calls.
func (d *MemoryDestination) Batches() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.batches
}
