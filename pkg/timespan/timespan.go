// Package timespan parses and formats durations in the clock notation used
// by spreadsheet and reporting tools:
//
//	[-]d                         whole days
//	[-][d.]hh:mm[:ss[.fffffff]]  optional days, clock time, 100ns fraction
//	[-]d:hh:mm:ss[.fffffff]      days as a leading clock field
//
// Go duration literals such as "1h30m" are accepted as well.
package timespan

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	tick        = 100 * time.Nanosecond
	ticksPerSec = uint64(time.Second / tick)
	fracDigits  = 7
	day         = 24 * time.Hour
	maxDays     = int64(1<<63-1) / int64(day)
)

// Parse reads a duration. The boolean is false when s is not a duration.
func Parse(s string) (time.Duration, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if d, ok := parseClock(s); ok {
		return d, true
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, false
	}
	return d, true
}

func parseClock(s string) (time.Duration, bool) {
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	var days int64
	var h, m, sec int64
	var frac time.Duration

	if !strings.Contains(s, ":") {
		n, ok := number(s, 8)
		if !ok {
			return 0, false
		}
		days = n
	} else {
		parts := strings.Split(s, ":")
		if dot := strings.IndexByte(parts[0], '.'); dot >= 0 {
			n, ok := number(parts[0][:dot], 8)
			if !ok {
				return 0, false
			}
			days = n
			parts[0] = parts[0][dot+1:]
		} else if len(parts) == 4 {
			n, ok := number(parts[0], 8)
			if !ok {
				return 0, false
			}
			days = n
			parts = parts[1:]
		}
		if len(parts) < 2 || len(parts) > 3 {
			return 0, false
		}

		var ok bool
		if h, ok = number(parts[0], 2); !ok || h > 23 {
			return 0, false
		}
		if m, ok = number(parts[1], 2); !ok || m > 59 {
			return 0, false
		}
		if len(parts) == 3 {
			secText, fracText, hasFrac := strings.Cut(parts[2], ".")
			if sec, ok = number(secText, 2); !ok || sec > 59 {
				return 0, false
			}
			if hasFrac {
				if frac, ok = fraction(fracText); !ok {
					return 0, false
				}
			}
		}
	}

	if days > maxDays {
		return 0, false
	}
	d := time.Duration(days)*day +
		time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(sec)*time.Second +
		frac
	if d < 0 {
		return 0, false
	}
	if neg {
		d = -d
	}
	return d, true
}

// number parses 1..maxLen ASCII digits.
func number(s string, maxLen int) (int64, bool) {
	if s == "" || len(s) > maxLen {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}

// fraction parses up to seven fractional digits as 100ns ticks.
func fraction(s string) (time.Duration, bool) {
	if len(s) > fracDigits {
		return 0, false
	}
	n, ok := number(s, fracDigits)
	if !ok {
		return 0, false
	}
	for i := len(s); i < fracDigits; i++ {
		n *= 10
	}
	return time.Duration(n) * tick, true
}

// Format renders d as [-][d.]hh:mm:ss[.fffffff]. Sub-tick precision is
// truncated.
func Format(d time.Duration) string {
	var b strings.Builder

	u := uint64(d)
	if d < 0 {
		b.WriteByte('-')
		u = -u
	}

	ticks := u / uint64(tick)
	frac := ticks % ticksPerSec
	secs := ticks / ticksPerSec

	days := secs / 86400
	secs %= 86400
	if days > 0 {
		fmt.Fprintf(&b, "%d.", days)
	}
	fmt.Fprintf(&b, "%02d:%02d:%02d", secs/3600, secs/60%60, secs%60)
	if frac > 0 {
		fmt.Fprintf(&b, ".%07d", frac)
	}
	return b.String()
}
