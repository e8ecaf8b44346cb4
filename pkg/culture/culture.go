// Package culture provides the locale rules used when scalar values are
// parsed from or rendered to text: date/time patterns and number
// separators.
//
// A small fixed set of cultures is supported. Requested locale tags are
// matched against that set with golang.org/x/text/language, so "de-AT"
// resolves to de-DE and "en" to en-US. Number separators are taken from
// CLDR through golang.org/x/text/number rather than hard-coded.
package culture

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// InvariantName is the name of the culture-neutral culture.
const InvariantName = "invariant"

// Culture holds the text conventions of one locale.
type Culture struct {
	Name             string
	Tag              language.Tag
	DecimalSeparator string
	GroupSeparator   string
	// DateTimeLayout renders a full timestamp.
	DateTimeLayout string

	dateLayouts []string
}

// sharedLayouts are accepted by every culture after its own layouts.
var sharedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	time.RFC1123Z,
	time.RFC1123,
	"Jan 2, 2006 15:04:05",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006 15:04:05",
	"2 Jan 2006",
	"2 January 2006",
	"20060102",
}

var (
	monthFirst = []string{
		"1/2/2006 15:04:05",
		"1/2/2006 15:04",
		"1/2/2006 3:04:05 PM",
		"1/2/2006 3:04 PM",
		"1/2/2006",
	}
	dayFirstSlash = []string{
		"2/1/2006 15:04:05",
		"2/1/2006 15:04",
		"2/1/2006",
	}
	dayFirstDot = []string{
		"2.1.2006 15:04:05",
		"2.1.2006 15:04",
		"2.1.2006",
	}
	dayFirstDash = []string{
		"2-1-2006 15:04:05",
		"2-1-2006 15:04",
		"2-1-2006",
	}
)

var (
	invariant = newCulture(InvariantName, language.Und, "01/02/2006 15:04:05", monthFirst)

	registered = []*Culture{
		newCulture("en-US", language.AmericanEnglish, "1/2/2006 3:04:05 PM", monthFirst),
		newCulture("en-GB", language.BritishEnglish, "02/01/2006 15:04:05", dayFirstSlash),
		newCulture("de-DE", language.MustParse("de-DE"), "02.01.2006 15:04:05", dayFirstDot),
		newCulture("fr-FR", language.MustParse("fr-FR"), "02/01/2006 15:04:05", dayFirstSlash),
		newCulture("nl-NL", language.MustParse("nl-NL"), "2-1-2006 15:04:05", dayFirstDash),
	}

	matcher = newMatcher()
)

func newMatcher() language.Matcher {
	tags := make([]language.Tag, len(registered))
	for i, c := range registered {
		tags[i] = c.Tag
	}
	return language.NewMatcher(tags)
}

func newCulture(name string, tag language.Tag, layout string, own []string) *Culture {
	group, decimal := separators(tag)
	layouts := make([]string, 0, len(own)+len(sharedLayouts))
	layouts = append(layouts, own...)
	layouts = append(layouts, sharedLayouts...)
	return &Culture{
		Name:             name,
		Tag:              tag,
		DecimalSeparator: decimal,
		GroupSeparator:   group,
		DateTimeLayout:   layout,
		dateLayouts:      layouts,
	}
}

// separators renders a probe number with the locale's CLDR pattern and
// reads back the grouping and decimal symbols.
func separators(tag language.Tag) (group, decimal string) {
	probe := message.NewPrinter(tag).Sprint(number.Decimal(1234567.5))

	var segments []string
	var cur strings.Builder
	for _, r := range probe {
		if unicode.IsDigit(r) {
			if cur.Len() > 0 {
				segments = append(segments, cur.String())
				cur.Reset()
			}
			continue
		}
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		segments = append(segments, cur.String())
	}

	switch len(segments) {
	case 0:
		return ",", "."
	case 1:
		return "", segments[0]
	default:
		return segments[0], segments[len(segments)-1]
	}
}

// Invariant returns the culture-neutral culture.
func Invariant() *Culture {
	return invariant
}

// Supported lists the names accepted by Lookup besides locale variants.
func Supported() []string {
	names := []string{InvariantName}
	for _, c := range registered {
		names = append(names, c.Name)
	}
	return names
}

// Lookup resolves a locale name. An empty name or "invariant" yields the
// invariant culture; any other BCP 47 tag is matched against the
// registered cultures.
func Lookup(name string) (*Culture, error) {
	n := strings.TrimSpace(name)
	if n == "" || strings.EqualFold(n, InvariantName) {
		return invariant, nil
	}

	tag, err := language.Parse(n)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", name, err)
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return nil, fmt.Errorf("unsupported locale %q (supported: %s)", name, strings.Join(Supported(), ", "))
	}
	return registered[idx], nil
}

// ParseTime parses s using the culture's layouts followed by the ISO and
// RFC layouts. Inputs without a zone are read in loc.
func (c *Culture) ParseTime(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range c.dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTime renders t with the culture's date-time pattern.
func (c *Culture) FormatTime(t time.Time) string {
	return t.Format(c.DateTimeLayout)
}

// ParseFloat parses a culture-formatted number. Group separators are
// ignored and the culture's decimal separator is required.
func (c *Culture) ParseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "_xX") {
		return 0, false
	}

	if c.GroupSeparator != "" {
		s = strings.ReplaceAll(s, c.GroupSeparator, "")
		if isSpace(c.GroupSeparator) {
			s = strings.Map(func(r rune) rune {
				if unicode.IsSpace(r) {
					return -1
				}
				return r
			}, s)
		}
	}
	if c.DecimalSeparator != "." {
		if strings.Contains(s, ".") {
			return 0, false
		}
		s = strings.ReplaceAll(s, c.DecimalSeparator, ".")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// FormatFloat renders f with the shortest digits that round-trip. The
// exponent form is used from 1E+15 upward and below 1E-04.
func (c *Culture) FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}

	sci := strconv.FormatFloat(f, 'e', -1, 64)
	mant, expText, _ := strings.Cut(sci, "e")
	exp, _ := strconv.Atoi(expText)

	var s string
	if exp >= 15 || exp < -4 {
		sign := "+"
		if exp < 0 {
			sign = "-"
			exp = -exp
		}
		s = fmt.Sprintf("%sE%s%02d", mant, sign, exp)
	} else {
		s = strconv.FormatFloat(f, 'f', -1, 64)
	}

	if c.DecimalSeparator != "." {
		s = strings.Replace(s, ".", c.DecimalSeparator, 1)
	}
	return s
}

func isSpace(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) && r != ' ' {
			return false
		}
	}
	return s != ""
}
