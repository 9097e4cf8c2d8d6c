package batch

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Chichichkin/IngestLogger/internal/logging"
)

var ErrAlreadyClosed = errors.New("batch processor already closed")

type State int32

const (
	StateRunning State = iota
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

type Option func(*Processor)

// WithFallbackLogger sets where delivery failures are reported. It must not
// route back into the processor itself.
func WithFallbackLogger(l *slog.Logger) Option {
	return func(bp *Processor) {
		if l != nil {
			bp.fallback = l
		}
	}
}

// WithRegisterer exposes the processor metrics through reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(bp *Processor) {
		bp.registerer = reg
	}
}

// Processor queues formatted log lines and posts them to a Notifier in
// size-capped batches from a single background goroutine.
type Processor struct {
	ctx        context.Context
	notifier   logging.Notifier
	config     logging.Config
	queue      *Queue
	stopCtx    context.CancelFunc
	wg         sync.WaitGroup
	lifecycle  sync.Mutex
	state      atomic.Int32
	started    atomic.Bool
	closed     atomic.Bool
	fallback   *slog.Logger
	registerer prometheus.Registerer
	metrics    *Metrics
}

// NewBatchProcessor keeps the values of ctx but not its cancellation: the
// flush loop only ends through Stop, which also drains the queue.
func NewBatchProcessor(ctx context.Context, notifier logging.Notifier, config logging.Config, opts ...Option) *Processor {
	nCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	bp := &Processor{
		ctx:      nCtx,
		notifier: notifier,
		config:   config.WithDefaults(),
		queue:    NewQueue(),
		stopCtx:  cancel,
		fallback: slog.New(slog.NewTextHandler(os.Stderr, nil)),
		metrics:  &Metrics{},
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.registerer != nil {
		bp.metrics.register(bp.registerer, func() float64 {
			return float64(bp.queue.Len())
		})
	}
	return bp
}

// Start launches the flush loop. It has no effect after the first call or
// once the processor has been stopped.
func (bp *Processor) Start() {
	bp.lifecycle.Lock()
	defer bp.lifecycle.Unlock()

	if bp.closed.Load() || !bp.started.CompareAndSwap(false, true) {
		return
	}
	bp.wg.Add(1)
	go bp.flushLoop()
}

// Stop ends the flush loop, waits for it to exit and then delivers whatever
// is still queued. Messages enqueued after Stop are dropped.
func (bp *Processor) Stop() error {
	bp.lifecycle.Lock()
	if !bp.closed.CompareAndSwap(false, true) {
		bp.lifecycle.Unlock()
		return ErrAlreadyClosed
	}
	bp.state.Store(int32(StateDraining))
	bp.lifecycle.Unlock()

	bp.stopCtx()
	bp.wg.Wait()

	bp.deliverAll(bp.queue.Seal())
	bp.metrics.IncFlushes()

	bp.state.Store(int32(StateStopped))
	return nil
}

func (bp *Processor) Close() error {
	return bp.Stop()
}

// Enqueue never blocks on delivery and never fails the caller.
func (bp *Processor) Enqueue(msg string) {
	if !bp.queue.Push(msg) {
		bp.metrics.IncMessagesDropped()
		bp.fallback.Warn("notification sink is closed, dropping message",
			slog.Int("bytes", len(msg)))
		return
	}
	bp.metrics.IncMessagesEnqueued()
}

// WriteLine lets the processor act as a logging.LineSink.
func (bp *Processor) WriteLine(line string) {
	bp.Enqueue(line)
}

func (bp *Processor) State() State {
	return State(bp.state.Load())
}

func (bp *Processor) Metrics() Metrics {
	return bp.metrics.GetMetricsStamp()
}

func (bp *Processor) flushLoop() {
	defer bp.wg.Done()

	ticker := time.NewTicker(bp.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			bp.flush()
		case <-bp.ctx.Done():
			return
		}
	}
}

func (bp *Processor) flush() {
	bp.deliverAll(bp.queue.Drain())
	bp.metrics.IncFlushes()
}

func (bp *Processor) deliverAll(messages []string) {
	for _, b := range Assemble(messages, bp.config.MaxBatchBytes) {
		bp.deliver(b)
	}
}

// deliver posts one batch. Failures are reported and swallowed so that the
// remaining batches of the flush still go out.
func (bp *Processor) deliver(batch []string) {
	text := strings.Join(batch, Separator)
	if err := bp.post(text); err != nil {
		bp.metrics.IncBatchesFailed()
		bp.fallback.Error("failed to deliver log batch",
			slog.String("destination", bp.config.Destination),
			slog.Int("messages", len(batch)),
			slog.Int("bytes", len(text)),
			slog.Any("error", err))
		return
	}
	bp.metrics.IncBatchesSent(len(batch))
}

func (bp *Processor) post(text string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("notifier panicked: %v", r)
		}
	}()

	// stopping the processor must not cut off a post already in flight
	ctx, cancel := context.WithTimeout(context.WithoutCancel(bp.ctx), bp.config.DeliveryTimeout)
	defer cancel()

	return bp.notifier.Post(ctx, bp.config.Destination, text)
}
