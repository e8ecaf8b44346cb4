package conversion

import (
	"time"

	"github.com/ajitpratap0/colconv/pkg/culture"
	"github.com/ajitpratap0/colconv/pkg/errors"
)

// Environment holds the locale rules conversions run under: the culture
// used to read and render text and the time zone that naive date-times
// are read in.
type Environment struct {
	Culture  *culture.Culture
	Location *time.Location
}

var defaultEnvironment = &Environment{
	Culture:  culture.Invariant(),
	Location: time.UTC,
}

// DefaultEnvironment returns the invariant culture in UTC.
func DefaultEnvironment() *Environment {
	return defaultEnvironment
}

// NewEnvironment resolves a locale name and an IANA time zone. Empty
// values select the invariant culture and UTC.
func NewEnvironment(locale, timeZone string) (*Environment, error) {
	c, err := culture.Lookup(locale)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid locale").
			WithDetail("locale", locale)
	}

	loc := time.UTC
	if timeZone != "" {
		loc, err = time.LoadLocation(timeZone)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid time zone").
				WithDetail("time_zone", timeZone)
		}
	}

	return &Environment{Culture: c, Location: loc}, nil
}

// Invariant returns an environment with the invariant culture and the
// time zone of e. Database drivers render decimals and times this way.
func (e *Environment) Invariant() *Environment {
	if e == nil {
		return defaultEnvironment
	}
	return &Environment{Culture: culture.Invariant(), Location: e.zone()}
}

func (e *Environment) zone() *time.Location {
	if e.Location == nil {
		return time.UTC
	}
	return e.Location
}

func (e *Environment) textCulture() *culture.Culture {
	if e.Culture == nil {
		return culture.Invariant()
	}
	return e.Culture
}
