package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/robinvdvleuten/beanledger/pyhash"
)

// BookingMethod selects the lots a reducing posting consumes.
type BookingMethod string

const (
	BookingFIFO    BookingMethod = "FIFO"
	BookingLIFO    BookingMethod = "LIFO"
	BookingAverage BookingMethod = "AVERAGE"
	BookingStrict  BookingMethod = "STRICT"
)

// ParseBookingMethod parses a booking method name, ignoring case.
func ParseBookingMethod(s string) (BookingMethod, error) {
	switch method := BookingMethod(strings.ToUpper(strings.TrimSpace(s))); method {
	case BookingFIFO, BookingLIFO, BookingAverage, BookingStrict:
		return method, nil
	}
	return "", fmt.Errorf("invalid booking method %q, expected FIFO, LIFO, AVERAGE or STRICT", s)
}

// Config holds process-level analyzer settings. Ledger options set with option directives
// take precedence over it.
type Config struct {
	BookingMethod   BookingMethod
	HashKey         pyhash.Key
	MaxIncludeDepth int // 0 means unbounded
}

// NewConfig creates a Config with the defaults of the reference tool.
func NewConfig() *Config {
	return &Config{
		BookingMethod: BookingFIFO,
		HashKey:       pyhash.DefaultKey,
	}
}

// contextKey is a private type to avoid key collisions in context.
type contextKey struct{}

// WithContext returns a new context with the Config attached.
func (c *Config) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// ConfigFromContext retrieves the Config from context.
// Returns a default Config if not found.
func ConfigFromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(contextKey{}).(*Config); ok {
		return cfg
	}
	return NewConfig()
}
