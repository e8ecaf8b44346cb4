// Package oadate converts between time.Time and OLE Automation dates, the
// numeric date encoding used by spreadsheets: the integral part counts
// days since 1899-12-30 and the fractional part is the time of day.
// Dates before the epoch keep a positive time-of-day fraction, so
// -1.25 is 1899-12-29 06:00.
//
// Only the wall clock of a time is encoded; the zone is not part of the
// number.
package oadate

import (
	"math"
	"time"
)

const msPerDay = 24 * 60 * 60 * 1000

const (
	// MaxValue is the exclusive upper bound of a decodable date (year 10000).
	MaxValue = 2958466.0
	// MinValue is the exclusive lower bound of a decodable date (year 100).
	MinValue = -657435.0
)

var (
	epoch   = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	minDate = time.Date(100, 1, 1, 0, 0, 0, 0, time.UTC)
	dayTwo  = time.Date(1, 1, 2, 0, 0, 0, 0, time.UTC)
)

// FromTime encodes the wall clock of t. The zero time encodes as 0 and a
// time on 0001-01-01 is read as a time of day on the epoch. Other dates
// before year 100 cannot be encoded.
func FromTime(t time.Time) (float64, bool) {
	civil := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	if civil.IsZero() {
		return 0, true
	}
	if civil.Before(dayTwo) {
		civil = epoch.Add(civil.Sub(time.Time{}))
	} else if civil.Before(minDate) {
		return 0, false
	}

	ms := civil.UnixMilli() - epoch.UnixMilli()
	if ms < 0 {
		if frac := ms % msPerDay; frac != 0 {
			ms -= (msPerDay + frac) * 2
		}
	}
	return float64(ms) / msPerDay, true
}

// ToTime decodes d into a wall clock in loc. Values outside
// (MinValue, MaxValue) and NaN are rejected.
func ToTime(d float64, loc *time.Location) (time.Time, bool) {
	if math.IsNaN(d) || d >= MaxValue || d <= MinValue {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}

	half := 0.5
	if d < 0 {
		half = -0.5
	}
	ms := int64(d*msPerDay + half)
	if ms < 0 {
		ms -= (ms % msPerDay) * 2
	}

	u := time.UnixMilli(epoch.UnixMilli() + ms).UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), u.Hour(), u.Minute(), u.Second(), u.Nanosecond(), loc), true
}
