package grouping

import (
	"log/slog"

	"github.com/goodsign/monday"
	"github.com/google/safehtml"

	"github.com/pthm/nestgroup/internal/logging"
	"github.com/pthm/nestgroup/pkg/record"
)

// KeyFunc extracts a level's raw value from a record in place of attribute
// lookup. It is called once per level with that level's column.
type KeyFunc func(column string, rec record.Record) any

// TitleFunc renders the base level title of a record.
type TitleFunc func(rec record.Record) safehtml.HTML

// DefaultLocale is the locale month names are rendered in.
const DefaultLocale = monday.LocaleEnUS

type options struct {
	id        string
	label     string
	date      bool
	precision Precision
	keyFunc   KeyFunc
	titleFunc TitleFunc
	locale    monday.Locale
	logger    *slog.Logger
}

// Option configures a Group or NestedGroup.
type Option func(*options)

// WithID sets the group identity. It defaults to the base column.
func WithID(id string) Option {
	return func(o *options) { o.id = id }
}

// WithLabel sets the display label. It defaults to the id.
func WithLabel(label string) Option {
	return func(o *options) { o.label = label }
}

// WithDate marks the base level as a date level at the given precision.
// An empty precision is Day.
func WithDate(p Precision) Option {
	return func(o *options) {
		o.date = true
		o.precision = p
	}
}

// WithKeyFunc installs a custom raw-value extractor.
func WithKeyFunc(fn KeyFunc) Option {
	return func(o *options) { o.keyFunc = fn }
}

// WithTitleFunc installs a custom base-level title renderer.
func WithTitleFunc(fn TitleFunc) Option {
	return func(o *options) { o.titleFunc = fn }
}

// WithLocale sets the locale for month names in date titles.
func WithLocale(locale monday.Locale) Option {
	return func(o *options) { o.locale = locale }
}

// WithLogger sets the logger used to report degraded grouping.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func buildOptions(column string, opts []Option) options {
	o := options{locale: DefaultLocale}
	for _, opt := range opts {
		opt(&o)
	}
	if o.id == "" {
		o.id = column
	}
	if o.label == "" {
		o.label = o.id
	}
	if o.logger == nil {
		o.logger = logging.NewDiscardLogger()
	}
	return o
}

// ValidLocale reports whether name is a locale month names can be rendered in.
func ValidLocale(name string) bool {
	for _, l := range monday.ListLocales() {
		if string(l) == name {
			return true
		}
	}
	return false
}
