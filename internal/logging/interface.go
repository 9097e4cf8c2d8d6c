package logging

import (
	"context"
	"time"
)

// Notifier posts one block of text to a remote messaging destination.
// Implementations make exactly one network call per Post.
type Notifier interface {
	Post(ctx context.Context, destination, text string) error
}

// LineSink receives fully formatted log lines.
type LineSink interface {
	WriteLine(line string)
}

type Config struct {
	Destination     string
	FlushInterval   time.Duration
	MaxBatchBytes   int
	DeliveryTimeout time.Duration
}

const (
	DefaultFlushInterval   = time.Second
	DefaultMaxBatchBytes   = 35000
	DefaultDeliveryTimeout = 10 * time.Second
)

// WithDefaults fills zero fields with the package defaults.
func (c Config) WithDefaults() Config {
	if c.FlushInterval <= 0 {
		c.FlushInterval = DefaultFlushInterval
	}
	if c.MaxBatchBytes <= 0 {
		c.MaxBatchBytes = DefaultMaxBatchBytes
	}
	if c.DeliveryTimeout <= 0 {
		c.DeliveryTimeout = DefaultDeliveryTimeout
	}
	return c
}
