// Package models defines the tabular data model shared by the conversion
// engine, the pipeline and the connectors: scalar types, columns, headers
// and rows.
//
// Every cell value is held as a plain Go value whose dynamic type is fixed
// by the column's ScalarType:
//
//	String   -> string
//	Int      -> int32
//	DateTime -> time.Time
//	Boolean  -> bool
//	Double   -> float64
//	Duration -> time.Duration
//
// A nil value means the cell is absent.
package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// ScalarType identifies one of the six supported column types.
// The set is closed.
type ScalarType int

const (
	String ScalarType = iota
	Int
	DateTime
	Boolean
	Double
	Duration
)

// ScalarTypes lists every scalar type in declaration order.
var ScalarTypes = []ScalarType{String, Int, DateTime, Boolean, Double, Duration}

var scalarTypeNames = [...]string{
	String:   "String",
	Int:      "Int",
	DateTime: "DateTime",
	Boolean:  "Boolean",
	Double:   "Double",
	Duration: "Duration",
}

// String returns the canonical type name.
func (t ScalarType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("ScalarType(%d)", int(t))
	}
	return scalarTypeNames[t]
}

// Valid reports whether t is one of the declared scalar types.
func (t ScalarType) Valid() bool {
	return t >= String && t <= Duration
}

// DurationAlias is accepted wherever a type name is parsed and resolves to
// Duration.
const DurationAlias = "TimeSpan"

// ParseScalarType resolves a type name case-insensitively. DurationAlias is
// accepted for Duration.
func ParseScalarType(name string) (ScalarType, error) {
	n := strings.TrimSpace(name)
	for _, t := range ScalarTypes {
		if strings.EqualFold(n, scalarTypeNames[t]) {
			return t, nil
		}
	}
	if strings.EqualFold(n, DurationAlias) {
		return Duration, nil
	}
	return 0, fmt.Errorf("unknown scalar type %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (t ScalarType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid scalar type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ScalarType) UnmarshalText(text []byte) error {
	parsed, err := ParseScalarType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Sentinel values mark a cell whose conversion failed. They sort to the
// extreme of their type so failed rows group together.
const (
	IntSentinel      int32         = math.MinInt32
	DoubleSentinel   float64       = -math.MaxFloat64
	DurationSentinel time.Duration = 0
)

// DateTimeSentinel is the zero time in UTC.
var DateTimeSentinel = time.Time{}.UTC()

// Sentinel returns the designated invalid value of t. Boolean has no
// sentinel and yields nil (absent).
func Sentinel(t ScalarType) any {
	switch t {
	case String:
		return ""
	case Int:
		return IntSentinel
	case DateTime:
		return DateTimeSentinel
	case Boolean:
		return nil
	case Double:
		return DoubleSentinel
	case Duration:
		return DurationSentinel
	default:
		return nil
	}
}

// Conforms reports whether v is nil or has the Go type that t stores.
func Conforms(t ScalarType, v any) bool {
	if v == nil {
		return true
	}
	switch t {
	case String:
		_, ok := v.(string)
		return ok
	case Int:
		_, ok := v.(int32)
		return ok
	case DateTime:
		_, ok := v.(time.Time)
		return ok
	case Boolean:
		_, ok := v.(bool)
		return ok
	case Double:
		_, ok := v.(float64)
		return ok
	case Duration:
		_, ok := v.(time.Duration)
		return ok
	default:
		return false
	}
}
