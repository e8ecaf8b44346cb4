package conversion

import (
	"math"
	"time"

	"github.com/ajitpratap0/colconv/pkg/models"
)

// ParseText reads raw text as a stored value of type t. Sources that only
// see text use it to type their columns. Blank text is absent and the
// sentinel of a type reads back as itself; text that does not parse is
// reported with false.
func ParseText(env *Environment, t models.ScalarType, text string) (any, bool) {
	if t == models.String {
		return text, true
	}
	if text == "" {
		return nil, true
	}
	if env == nil {
		env = DefaultEnvironment()
	}
	parse, ok := textParsers[t]
	if !ok {
		return nil, false
	}
	return parse(env, text)
}

// FormatValue renders a cell value with the String rules of its type. Nil
// renders as the empty string.
func FormatValue(env *Environment, value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	if env == nil {
		env = DefaultEnvironment()
	}

	t, ok := typeOf(value)
	if !ok {
		return ""
	}
	fn, err := lookupRule(Pair{Source: t, Target: models.String})
	if err != nil {
		return ""
	}
	out, ok := fn(env, value)
	if !ok {
		return ""
	}
	return out.(string)
}

// Coerce turns a value read by a connector into a value of type t. Wider
// Go numeric types and byte slices are accepted; everything else goes
// through the conversion rules. Nil stays absent.
func Coerce(env *Environment, t models.ScalarType, v any) (any, bool) {
	v = normalize(v)
	if v == nil {
		return nil, true
	}
	if s, ok := v.(string); ok {
		return ParseText(env, t, s)
	}
	from, ok := typeOf(v)
	if !ok {
		return nil, false
	}
	if from == t {
		return v, true
	}
	if env == nil {
		env = DefaultEnvironment()
	}
	fn, err := lookupRule(Pair{Source: from, Target: t})
	if err != nil {
		return nil, false
	}
	return fn(env, v)
}

func normalize(v any) any {
	switch n := v.(type) {
	case []byte:
		return string(n)
	case int:
		return narrow(int64(n))
	case int8:
		return int32(n)
	case int16:
		return int32(n)
	case int64:
		return narrow(n)
	case uint8:
		return int32(n)
	case uint16:
		return int32(n)
	case uint32:
		return narrow(int64(n))
	case uint64:
		if n > math.MaxInt32 {
			return float64(n)
		}
		return int32(n)
	case float32:
		return float64(n)
	default:
		return v
	}
}

// narrow keeps integers that fit an Int and widens the rest to Double.
func narrow(n int64) any {
	if n < math.MinInt32 || n > math.MaxInt32 {
		return float64(n)
	}
	return int32(n)
}

// typeOf maps a cell value to its scalar type.
func typeOf(v any) (models.ScalarType, bool) {
	switch v.(type) {
	case string:
		return models.String, true
	case int32:
		return models.Int, true
	case time.Time:
		return models.DateTime, true
	case bool:
		return models.Boolean, true
	case float64:
		return models.Double, true
	case time.Duration:
		return models.Duration, true
	default:
		return 0, false
	}
}
