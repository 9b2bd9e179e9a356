package tasks

import (
	"strings"
	"time"
)

// DueLayout is the format of Task.DueAt values written by the rules.
const DueLayout = "2006-01-02 15:04"

var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDateTime reads a viewing timestamp. Values carrying an offset are
// taken as is; naive values are interpreted in loc. ok is false for blank or
// unrecognised input.
func ParseDateTime(s string, loc *time.Location) (t time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
