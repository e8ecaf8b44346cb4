package models

import (
	"fmt"
	"strings"
)

// Column describes one column of a table. Columns are values and never
// change after creation.
type Column struct {
	Name string     `json:"name" yaml:"name"`
	Type ScalarType `json:"type" yaml:"type"`
}

// NewColumn creates a column descriptor.
func NewColumn(name string, t ScalarType) Column {
	return Column{Name: name, Type: t}
}

// String returns "name (Type)".
func (c Column) String() string {
	return fmt.Sprintf("%s (%s)", c.Name, c.Type)
}

// Header is the ordered list of columns of a table. Column names are
// unique. A header is mutated only while the schema is being built; once
// row processing starts it must be treated as read-only.
type Header struct {
	columns []Column
	index   map[string]int
}

// NewHeader builds a header from the given columns.
func NewHeader(cols ...Column) (*Header, error) {
	h := &Header{index: make(map[string]int, len(cols))}
	if err := h.AddColumns(cols...); err != nil {
		return nil, err
	}
	return h, nil
}

// MustHeader is like NewHeader but panics on duplicate names.
func MustHeader(cols ...Column) *Header {
	h, err := NewHeader(cols...)
	if err != nil {
		panic(err)
	}
	return h
}

// AddColumns appends columns to the header. It fails without modifying
// the header if any name is empty, duplicated or the type is invalid.
func (h *Header) AddColumns(cols ...Column) error {
	seen := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		if c.Name == "" {
			return fmt.Errorf("column name must not be empty")
		}
		if !c.Type.Valid() {
			return fmt.Errorf("column %q has invalid type %d", c.Name, int(c.Type))
		}
		if _, dup := h.index[c.Name]; dup {
			return fmt.Errorf("column %q already exists", c.Name)
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("column %q listed twice", c.Name)
		}
		seen[c.Name] = struct{}{}
	}

	if h.index == nil {
		h.index = make(map[string]int, len(cols))
	}
	for _, c := range cols {
		h.index[c.Name] = len(h.columns)
		h.columns = append(h.columns, c)
	}
	return nil
}

// Columns returns a copy of the columns in order.
func (h *Header) Columns() []Column {
	out := make([]Column, len(h.columns))
	copy(out, h.columns)
	return out
}

// Column returns the i-th column.
func (h *Header) Column(i int) Column {
	return h.columns[i]
}

// Len returns the number of columns.
func (h *Header) Len() int {
	return len(h.columns)
}

// Index returns the position of the named column or -1.
func (h *Header) Index(name string) int {
	if i, ok := h.index[name]; ok {
		return i
	}
	return -1
}

// Lookup finds a column by name.
func (h *Header) Lookup(name string) (Column, bool) {
	i := h.Index(name)
	if i < 0 {
		return Column{}, false
	}
	return h.columns[i], true
}

// Clone returns an independent copy of the header.
func (h *Header) Clone() *Header {
	c := &Header{
		columns: make([]Column, len(h.columns)),
		index:   make(map[string]int, len(h.index)),
	}
	copy(c.columns, h.columns)
	for k, v := range h.index {
		c.index[k] = v
	}
	return c
}

// ParseColumn reads a "name:Type" declaration. Text without a valid type
// suffix is a String column named by the whole text.
func ParseColumn(spec string) Column {
	if i := strings.LastIndexByte(spec, ':'); i > 0 {
		if t, err := ParseScalarType(spec[i+1:]); err == nil {
			return NewColumn(strings.TrimSpace(spec[:i]), t)
		}
	}
	return NewColumn(strings.TrimSpace(spec), String)
}
