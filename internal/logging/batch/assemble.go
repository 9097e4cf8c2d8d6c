package batch

import "github.com/Chichichkin/IngestLogger/internal/logging"

// Separator joins the messages of one batch.
const Separator = "\n"

// Assemble splits messages into ordered batches. Every message counts its
// length plus one separator byte; a batch of two or more messages never
// exceeds maxBytes. A message that is larger than maxBytes on its own is
// returned as a single-element batch.
func Assemble(messages []string, maxBytes int) [][]string {
	if len(messages) == 0 {
		return nil
	}
	if maxBytes <= 0 {
		maxBytes = logging.DefaultMaxBatchBytes
	}

	var (
		batches [][]string
		current []string
		size    int
	)
	for _, msg := range messages {
		n := len(msg) + len(Separator)
		if len(current) > 0 && size+n > maxBytes {
			batches = append(batches, current)
			current, size = nil, 0
		}
		current = append(current, msg)
		size += n
	}
	return append(batches, current)
}
