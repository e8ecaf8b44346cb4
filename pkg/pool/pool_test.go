package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ajitpratap0/colconv/pkg/models"
)

func TestPoolReset(t *testing.T) {
	p := New(
		func() []int { return make([]int, 0, 8) },
		nil,
	)
	s := p.Get()
	assert.Equal(t, 8, cap(s))
	p.Put(s)

	stats := p.Stats()
	assert.GreaterOrEqual(t, stats.Allocated, int64(1))
	assert.Zero(t, stats.InUse)
}

func TestPoolConcurrent(t *testing.T) {
	p := New(func() *int { return new(int) }, func(i *int) { *i = 0 })

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			v := p.Get()
			*v = n
			p.Put(v)
		}(i)
	}
	wg.Wait()

	assert.Zero(t, p.Stats().InUse)
}

func TestRowPool(t *testing.T) {
	header := models.MustHeader(
		models.NewColumn("a", models.String),
		models.NewColumn("b", models.Int),
	)
	rows := NewRowPool(header)

	row := rows.Get()
	assert.Equal(t, 2, row.Len())
	row.Load([]any{"x", int32(1)})
	row.Set(header.Column(1), int32(2), "note")
	rows.Put(row)
	rows.Put(nil)

	again := rows.Get()
	assert.Same(t, header, again.Header())
	for i := 0; i < again.Len(); i++ {
		assert.Equal(t, models.Cell{}, again.Cell(i))
	}
	rows.PutAll([]*models.Row{again})

	assert.Zero(t, rows.Stats().InUse)
}
