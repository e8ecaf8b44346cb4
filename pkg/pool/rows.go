package pool

import (
	"github.com/ajitpratap0/colconv/pkg/models"
)

// RowPool recycles rows bound to one header.
type RowPool struct {
	header *models.Header
	pool   *Pool[*models.Row]
}

// NewRowPool creates a pool of rows for header. The header must be final:
// rows are sized for its current length.
func NewRowPool(header *models.Header) *RowPool {
	return &RowPool{
		header: header,
		pool: New(
			func() *models.Row { return models.NewRow(header) },
			func(r *models.Row) { r.Rebind(header) },
		),
	}
}

// Get returns an empty row.
func (p *RowPool) Get() *models.Row {
	return p.pool.Get()
}

// Put returns row to the pool.
func (p *RowPool) Put(row *models.Row) {
	if row == nil {
		return
	}
	p.pool.Put(row)
}

// PutAll returns every row of a batch.
func (p *RowPool) PutAll(rows []*models.Row) {
	for _, r := range rows {
		p.Put(r)
	}
}

// Stats forwards the statistics of the underlying pool.
func (p *RowPool) Stats() Stats {
	return p.pool.Stats()
}
