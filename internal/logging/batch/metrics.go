package batch

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	MessagesEnqueued  int
	MessagesDropped   int
	MessagesDelivered int
	BatchesSent       int
	BatchesFailed     int
	Flushes           int
	mu                sync.RWMutex
}

func (m *Metrics) IncMessagesEnqueued() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MessagesEnqueued++
}

func (m *Metrics) IncMessagesDropped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MessagesDropped++
}

func (m *Metrics) IncBatchesSent(messages int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BatchesSent++
	m.MessagesDelivered += messages
}

func (m *Metrics) IncBatchesFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BatchesFailed++
}

func (m *Metrics) IncFlushes() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Flushes++
}

func (m *Metrics) GetMetricsStamp() Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Metrics{
		MessagesEnqueued:  m.MessagesEnqueued,
		MessagesDropped:   m.MessagesDropped,
		MessagesDelivered: m.MessagesDelivered,
		BatchesSent:       m.BatchesSent,
		BatchesFailed:     m.BatchesFailed,
		Flushes:           m.Flushes,
	}
}

// register exposes the counters through reg. Values are read from the
// stamp at scrape time, so the processor keeps a single source of truth.
func (m *Metrics) register(reg prometheus.Registerer, queueDepth func() float64) {
	factory := promauto.With(reg)

	counter := func(name, help string, value func(*Metrics) int) {
		factory.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "ingestlog",
			Subsystem: "notify",
			Name:      name,
			Help:      help,
		}, func() float64 {
			stamp := m.GetMetricsStamp()
			return float64(value(&stamp))
		})
	}

	counter("messages_enqueued_total", "Messages accepted into the notification queue",
		func(s *Metrics) int { return s.MessagesEnqueued })
	counter("messages_dropped_total", "Messages rejected because the sink was closed",
		func(s *Metrics) int { return s.MessagesDropped })
	counter("messages_delivered_total", "Messages contained in successfully posted batches",
		func(s *Metrics) int { return s.MessagesDelivered })
	counter("batches_sent_total", "Batches posted to the notifier without error",
		func(s *Metrics) int { return s.BatchesSent })
	counter("batches_failed_total", "Batches the notifier failed to post",
		func(s *Metrics) int { return s.BatchesFailed })
	counter("flushes_total", "Completed flush cycles, periodic and final",
		func(s *Metrics) int { return s.Flushes })

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "ingestlog",
		Subsystem: "notify",
		Name:      "queue_depth",
		Help:      "Messages waiting for the next flush",
	}, queueDepth)
}
