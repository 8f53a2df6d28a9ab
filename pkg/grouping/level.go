package grouping

import (
	"fmt"
	"strings"

	"github.com/pthm/nestgroup"
	"github.com/pthm/nestgroup/internal/sqldsl"
)

// Kind is how a level's raw value is interpreted.
type Kind string

const (
	// Plain levels stringify their value.
	Plain Kind = "plain"
	// Date levels parse their value and bucket it by calendar period.
	Date Kind = "date"
)

// ParseKind validates a kind name. The empty string is Plain.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case "", Plain, "column":
		return Plain, nil
	case Date:
		return Date, nil
	}
	return "", fmt.Errorf("%w: %q", nestgroup.ErrInvalidKind, s)
}

// Precision is the calendar period a date level buckets by.
type Precision string

const (
	Day   Precision = "day"
	Month Precision = "month"
	Year  Precision = "year"
)

// ParsePrecision validates a precision name. The empty string is Day.
func ParsePrecision(s string) (Precision, error) {
	switch p := Precision(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return Day, nil
	case Day, Month, Year:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", nestgroup.ErrInvalidPrecision, s)
}

// Level describes one grouping level: a column path, how its value is
// interpreted, and for dates the bucketing precision.
type Level struct {
	Column    string
	Kind      Kind
	Precision Precision // date levels only; empty means Day
}

// IsDate reports whether the level buckets by date.
func (l Level) IsDate() bool {
	return l.Kind == Date
}

// precision returns the effective precision, defaulting to Day.
func (l Level) precision() Precision {
	if l.Precision == "" {
		return Day
	}
	return l.Precision
}

// String renders the level the way definitions spell it.
func (l Level) String() string {
	if !l.IsDate() {
		return l.Column
	}
	return l.Column + " (" + string(l.precision()) + ")"
}

// truncExpr returns the SQL expression a date level groups and scopes by.
// Day precision is date(col); coarser precisions truncate to the first day
// of the period before taking the date.
func (l Level) truncExpr(column string) string {
	col := sqldsl.Ident(column)
	if l.precision() == Day {
		return sqldsl.DateOf{Expr: col}.SQL()
	}
	return sqldsl.DateOf{Expr: sqldsl.DateTrunc{Unit: string(l.precision()), Expr: col}}.SQL()
}
