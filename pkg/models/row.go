package models

// Cell is a single row value together with its optional display
// annotation. An annotation replaces the value when the cell is shown.
type Cell struct {
	Value      any
	Annotation string
}

// Display reports whether the cell carries an annotation.
func (c Cell) Display() (string, bool) {
	return c.Annotation, c.Annotation != ""
}

// Row holds the cells of one table row, addressed through the columns of
// its header. A row may be written by one goroutine at a time; distinct
// rows are independent.
type Row struct {
	header *Header
	cells  []Cell
}

// NewRow allocates an empty row for the header.
func NewRow(h *Header) *Row {
	return &Row{header: h, cells: make([]Cell, h.Len())}
}

// Header returns the header the row is bound to.
func (r *Row) Header() *Header {
	return r.header
}

// Get returns the value of col, or nil when the column is unknown.
func (r *Row) Get(col Column) any {
	i := r.header.Index(col.Name)
	if i < 0 || i >= len(r.cells) {
		return nil
	}
	return r.cells[i].Value
}

// Set stores value and annotation for col. Columns missing from the
// header are ignored.
func (r *Row) Set(col Column, value any, annotation string) {
	i := r.header.Index(col.Name)
	if i < 0 {
		return
	}
	if i >= len(r.cells) {
		r.grow(r.header.Len())
	}
	r.cells[i] = Cell{Value: value, Annotation: annotation}
}

// Cell returns the i-th cell.
func (r *Row) Cell(i int) Cell {
	if i >= len(r.cells) {
		return Cell{}
	}
	return r.cells[i]
}

// Len returns the number of cells.
func (r *Row) Len() int {
	return len(r.cells)
}

// Load fills the leading cells with values and clears the rest.
func (r *Row) Load(values []any) {
	r.grow(r.header.Len())
	for i := range r.cells {
		if i < len(values) {
			r.cells[i] = Cell{Value: values[i]}
		} else {
			r.cells[i] = Cell{}
		}
	}
}

// Values returns the raw cell values in column order.
func (r *Row) Values() []any {
	out := make([]any, len(r.cells))
	for i, c := range r.cells {
		out[i] = c.Value
	}
	return out
}

// Reset clears every cell so the row can be reused.
func (r *Row) Reset() {
	for i := range r.cells {
		r.cells[i] = Cell{}
	}
}

// Rebind attaches the row to another header and clears it.
func (r *Row) Rebind(h *Header) {
	r.header = h
	r.grow(h.Len())
	r.cells = r.cells[:h.Len()]
	r.Reset()
}

func (r *Row) grow(n int) {
	if n <= len(r.cells) {
		return
	}
	if n <= cap(r.cells) {
		r.cells = r.cells[:n]
		return
	}
	cells := make([]Cell, n)
	copy(cells, r.cells)
	r.cells = cells
}
