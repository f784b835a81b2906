package browse

import (
	"log/slog"
	"time"

	"github.com/leapstack-labs/facilitydir/internal/notifier"
)

// Defaults for list controllers.
const (
	DefaultPageSize = 20
	DefaultDebounce = 300 * time.Millisecond
)

type options struct {
	pageSize int
	debounce time.Duration
	clock    Clock
	logger   *slog.Logger
	notifier *notifier.Notifier
}

// Option configures a controller.
type Option func(*options)

// WithPageSize sets the number of rows per page. Values below 1 are ignored.
func WithPageSize(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.pageSize = n
		}
	}
}

// WithDebounce sets the search debounce delay.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.debounce = d
		}
	}
}

// WithClock replaces the clock used for debouncing.
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithNotifier makes the controller publish on n instead of a private notifier.
func WithNotifier(n *notifier.Notifier) Option {
	return func(o *options) { o.notifier = n }
}

func buildOptions(opts []Option) options {
	o := options{
		pageSize: DefaultPageSize,
		debounce: DefaultDebounce,
		clock:    RealClock(),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.notifier == nil {
		o.notifier = notifier.New()
	}
	return o
}
