package binder

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/streamdl/streamdl/internal/types"
)

// fractionPattern finds the fractional seconds following hh:mm:ss.
var fractionPattern = regexp.MustCompile(`\d{2}:\d{2}:\d{2}\.(\d+)`)

// time.Parse accepts fractional seconds after the seconds field even when the
// layout has none, so one layout per separator and zone style suffices.
var temporalLayouts = map[types.Kind][]string{
	types.KindDate: {
		"2006-01-02",
	},
	types.KindTime: {
		"15:04:05",
		"15:04",
	},
	types.KindTimestamp: {
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04",
		"2006-01-02T15:04",
	},
	types.KindTimestampTz: {
		"2006-01-02 15:04:05Z07:00",
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02 15:04:05Z0700",
		"2006-01-02T15:04:05Z0700",
		"2006-01-02 15:04:05-07",
		"2006-01-02T15:04:05-07",
		"2006-01-02 15:04:05 MST",
	},
}

// fractionDigits returns the number of fractional-second digits in s.
func fractionDigits(s string) int {
	m := fractionPattern.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	return len(m[1])
}

// parseTemporal parses s for a temporal primitive. Time values are anchored
// on 0000-01-01 UTC and Timestamp values are taken as UTC wall clock.
func parseTemporal(p *types.Primitive, s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	for _, layout := range temporalLayouts[p.Kind()] {
		t, err := time.Parse(layout, trimmed)
		if err != nil {
			continue
		}
		if p.Kind() == types.KindTimestampTz {
			return t, nil
		}
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid %s: %q", p.Kind(), s)
}
