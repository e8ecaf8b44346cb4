package conversion

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ajitpratap0/colconv/pkg/errors"
	"github.com/ajitpratap0/colconv/pkg/models"
	"github.com/ajitpratap0/colconv/pkg/oadate"
	"github.com/ajitpratap0/colconv/pkg/timespan"
)

// Pair is a directed conversion from one scalar type to another.
type Pair struct {
	Source models.ScalarType
	Target models.ScalarType
}

func (p Pair) String() string {
	return p.Source.String() + "->" + p.Target.String()
}

// convertFunc converts one value. The boolean is false when the value
// cannot be converted; the caller then applies the fallback.
type convertFunc func(env *Environment, in any) (any, bool)

// from adapts a rule on a concrete Go type. Values of any other dynamic
// type, nil included, fail.
func from[S any](fn func(env *Environment, v S) (any, bool)) convertFunc {
	return func(env *Environment, in any) (any, bool) {
		v, ok := in.(S)
		if !ok {
			return nil, false
		}
		return fn(env, v)
	}
}

func always[S any](fn func(env *Environment, v S) any) convertFunc {
	return from(func(env *Environment, v S) (any, bool) {
		return fn(env, v), true
	})
}

// rules is the single source of the supported conversions. The
// compatibility matrix is derived from its keys.
var rules = map[Pair]convertFunc{
	{models.String, models.Int}:      from(stringToInt),
	{models.String, models.DateTime}: from(stringToDateTime),
	{models.String, models.Boolean}:  from(stringToBoolean),
	{models.String, models.Double}:   from(stringToDouble),
	{models.String, models.Duration}: from(stringToDuration),

	{models.Int, models.String}: always(func(_ *Environment, v int32) any {
		return strconv.FormatInt(int64(v), 10)
	}),
	{models.Int, models.DateTime}: from(func(env *Environment, v int32) (any, bool) {
		return stringToDateTime(env, strconv.FormatInt(int64(v), 10))
	}),
	{models.Int, models.Boolean}: always(func(_ *Environment, v int32) any { return v != 0 }),
	{models.Int, models.Double}:  always(func(_ *Environment, v int32) any { return float64(v) }),

	{models.DateTime, models.String}: always(func(env *Environment, v time.Time) any {
		return env.textCulture().FormatTime(v.In(env.zone()))
	}),
	{models.DateTime, models.Double}: from(func(env *Environment, v time.Time) (any, bool) {
		if v.IsZero() {
			return 0.0, true
		}
		return oadate.FromTime(v.In(env.zone()))
	}),
	{models.DateTime, models.Duration}: always(func(env *Environment, v time.Time) any {
		return timeOfDay(v.In(env.zone()))
	}),

	{models.Boolean, models.String}: always(func(_ *Environment, v bool) any {
		if v {
			return "True"
		}
		return "False"
	}),
	{models.Boolean, models.Int}: always(func(_ *Environment, v bool) any {
		if v {
			return int32(1)
		}
		return int32(0)
	}),

	{models.Double, models.String}: always(func(env *Environment, v float64) any {
		return env.textCulture().FormatFloat(v)
	}),
	{models.Double, models.Int}:     from(doubleToInt),
	{models.Double, models.Boolean}: always(func(_ *Environment, v float64) any { return v != 0 }),
	{models.Double, models.DateTime}: from(func(env *Environment, v float64) (any, bool) {
		t, ok := oadate.ToTime(v, env.zone())
		if !ok || t.IsZero() {
			return nil, false
		}
		return t.UTC(), true
	}),

	{models.Duration, models.String}: always(func(_ *Environment, v time.Duration) any {
		return timespan.Format(v)
	}),
}

// lookupRule returns the conversion for p. A missing rule is a
// capability error; Compile never lets one through.
func lookupRule(p Pair) (convertFunc, error) {
	fn, ok := rules[p]
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeCapability, "unsupported conversion %s to %s", p.Source, p.Target).
			WithDetail("source", p.Source.String()).
			WithDetail("target", p.Target.String())
	}
	return fn, nil
}

// textParsers read text as a stored value of each type. Unlike the
// String rules they accept the sentinel values, which are valid data once
// a column is typed.
var textParsers = map[models.ScalarType]func(env *Environment, s string) (any, bool){
	models.Int:      parseInt,
	models.DateTime: parseDateTime,
	models.Boolean:  stringToBoolean,
	models.Double:   parseDouble,
	models.Duration: parseDuration,
}

func parseInt(_ *Environment, s string) (any, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return nil, false
	}
	return int32(n), true
}

func parseDateTime(env *Environment, s string) (any, bool) {
	t, ok := env.textCulture().ParseTime(s, env.zone())
	if !ok {
		return nil, false
	}
	return t.UTC(), true
}

func parseDouble(env *Environment, s string) (any, bool) {
	f, ok := env.textCulture().ParseFloat(s)
	if !ok {
		return nil, false
	}
	return f, true
}

func parseDuration(_ *Environment, s string) (any, bool) {
	d, ok := timespan.Parse(s)
	if !ok {
		return nil, false
	}
	return d, true
}

// rejectSentinel turns a parsed sentinel into a failed conversion.
func rejectSentinel(t models.ScalarType, parse func(*Environment, string) (any, bool)) func(*Environment, string) (any, bool) {
	sentinel := models.Sentinel(t)
	return func(env *Environment, s string) (any, bool) {
		v, ok := parse(env, s)
		if !ok || v == sentinel {
			return nil, false
		}
		return v, true
	}
}

var (
	stringToInt      = rejectSentinel(models.Int, parseInt)
	stringToDouble   = rejectSentinel(models.Double, parseDouble)
	stringToDuration = rejectSentinel(models.Duration, parseDuration)
)

func stringToDateTime(env *Environment, s string) (any, bool) {
	v, ok := parseDateTime(env, s)
	if !ok || v.(time.Time).IsZero() {
		return nil, false
	}
	return v, true
}

func stringToBoolean(_ *Environment, s string) (any, bool) {
	switch v := strings.TrimSpace(s); {
	case strings.EqualFold(v, "true"):
		return true, true
	case strings.EqualFold(v, "false"):
		return false, true
	default:
		return nil, false
	}
}

// doubleToInt rounds half to even. NaN and values outside the int32 range
// overflow and fail.
func doubleToInt(_ *Environment, v float64) (any, bool) {
	if math.IsNaN(v) {
		return nil, false
	}
	r := math.RoundToEven(v)
	if r < math.MinInt32 || r > math.MaxInt32 {
		return nil, false
	}
	return int32(r), true
}

func timeOfDay(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}
