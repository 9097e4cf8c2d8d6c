package batch

import "sync"

// Queue is an unbounded FIFO of formatted messages. Producers never wait on
// the consumer; the mutex is held only while the slice is mutated.
type Queue struct {
	mu       sync.Mutex
	messages []string
	sealed   bool
}

func NewQueue() *Queue {
	return &Queue{}
}

// Push appends msg. It returns false once the queue has been sealed.
func (q *Queue) Push(msg string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.sealed {
		return false
	}
	q.messages = append(q.messages, msg)
	return true
}

// Drain removes and returns every queued message in enqueue order.
func (q *Queue) Drain() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.takeLocked()
}

// Seal drains the queue and rejects all later pushes, in one step.
func (q *Queue) Seal() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.sealed = true
	return q.takeLocked()
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.messages)
}

func (q *Queue) takeLocked() []string {
	if len(q.messages) == 0 {
		return nil
	}
	drained := q.messages
	q.messages = nil
	return drained
}
