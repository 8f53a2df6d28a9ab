package grouping

import (
	"strings"
	"time"

	"github.com/goodsign/monday"

	"github.com/pthm/nestgroup/pkg/record"
)

// titleLayout renders date titles as abbreviated month and year: "Jan 2024".
const titleLayout = "Jan 2006"

// nullTitle stands in for a blank level in titles.
const nullTitle = "(null)"

// dateParseFormats lists formats to try when parsing date strings, in order of preference.
var dateParseFormats = []string{
	time.RFC3339Nano,                   // 2006-01-02T15:04:05.999999999Z07:00
	time.RFC3339,                       // 2006-01-02T15:04:05Z07:00
	"2006-01-02T15:04:05",              // ISO without timezone
	"2006-01-02T15:04",                 // ISO without seconds
	"2006-01-02 15:04:05",              // Space separator
	"2006-01-02 15:04",                 // Space separator without seconds
	"2006-01-02",                       // Date only (midnight)
	"2006/01/02",                       // YYYY/MM/DD
	"2006-01-02T15:04:05.000",          // ISO with milliseconds no TZ
	"2006-01-02 15:04:05.000",          // Space with milliseconds
	"2006-01-02 15:04:05.999999999Z07", // Postgres timestamptz text
}

// parseDate interprets v as a point in time.
func parseDate(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	case string:
		return parseDateString(t)
	case []byte:
		return parseDateString(string(t))
	}
	return time.Time{}, false
}

func parseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, format := range dateParseFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// truncate reduces t to the first day of its period.
func truncate(t time.Time, p Precision) time.Time {
	switch p {
	case Year:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	case Month:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// normalize turns a raw level value into its key segment. Blank values
// become nil; dates become the canonical day string of their period.
func (g *Group) normalize(l Level, raw any) any {
	v := record.Unwrap(raw)
	if record.Blank(v) {
		return nil
	}
	if l.IsDate() {
		if t, ok := parseDate(v); ok {
			return truncate(t, l.precision()).Format(time.DateOnly)
		}
		g.opts.logger.Debug("unparsable date value in group key",
			"group", g.opts.id, "column", l.Column, "value", v)
	}
	return record.Stringify(v)
}

// format renders a raw level value for a title.
func (g *Group) format(l Level, raw any) string {
	v := record.Unwrap(raw)
	if record.Blank(v) {
		return nullTitle
	}
	if l.IsDate() {
		if t, ok := parseDate(v); ok {
			return monday.Format(t, titleLayout, g.opts.locale)
		}
		g.opts.logger.Debug("unparsable date value in group title",
			"group", g.opts.id, "column", l.Column, "value", v)
	}
	return record.Stringify(v)
}

// extract reads a level's raw value from a record.
func (g *Group) extract(rec record.Record, column string) any {
	if g.opts.keyFunc != nil {
		return g.opts.keyFunc(column, rec)
	}
	v, _ := rec.Get(column)
	return v
}
