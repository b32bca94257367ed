package textback

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type durationUnit struct {
	name string
	ms   float64
}

// Units from largest to smallest. A year is 365.25 days and a month is a twelfth of a year.
var durationUnits = []durationUnit{
	{"year", 31557600000},
	{"month", 2629800000},
	{"week", 604800000},
	{"day", 86400000},
	{"hour", 3600000},
	{"minute", 60000},
	{"second", 1000},
	{"millisecond", 1},
}

// HumanizeDuration renders a duration in milliseconds using only its largest unit, rounded to
// the nearest whole count (halves round up). When rounding reaches the next larger unit the
// larger unit is used instead, so 59.6 minutes renders as "1 hour". Two durations are the same
// choice exactly when their rendered strings are equal.
func HumanizeDuration(ms float64) string {
	if ms < 0 {
		ms = -ms
	}

	i := len(durationUnits) - 1
	for k, u := range durationUnits {
		if ms >= u.ms {
			i = k
			break
		}
	}

	count := math.Round(ms / durationUnits[i].ms)
	if i > 0 && count*durationUnits[i].ms >= durationUnits[i-1].ms {
		i--
		count = math.Max(1, math.Round(ms/durationUnits[i].ms))
	}

	name := durationUnits[i].name
	if count != 1 {
		name += "s"
	}
	return fmt.Sprintf("%d %s", int64(count), name)
}

// FormatDate renders the calendar date of t in loc, e.g. "March 4, 2021"
func FormatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("January 2, 2006")
}

// FormatPlatform renders a platform for display
func FormatPlatform(p Platform) string {
	switch p {
	case PlatformInstagram:
		return "Instagram"
	case PlatformMessenger:
		return "Messenger"
	}
	s := strings.ToLower(string(p))
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
