package queue

import (
	"sync"

	"github.com/kbukum/analyticskit/logger"
)

// DefaultMaxPerTarget is the per-target cap used when none is configured.
const DefaultMaxPerTarget = 100

// Queue is an ordered, per-target buffer of events. Each target's buffer
// is an independent bounded FIFO.
type Queue struct {
	mu       sync.Mutex
	max      int
	byTarget map[string][]Event
	log      *logger.Logger
}

// New creates a Queue with the given per-target cap. A cap of zero or less
// falls back to DefaultMaxPerTarget.
func New(maxPerTarget int, log *logger.Logger) *Queue {
	if maxPerTarget <= 0 {
		maxPerTarget = DefaultMaxPerTarget
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Queue{
		max:      maxPerTarget,
		byTarget: make(map[string][]Event),
		log:      log.WithComponent("queue"),
	}
}

// Enqueue appends an event to the target's buffer. When the buffer is at
// capacity the oldest entry is dropped to make room.
func (q *Queue) Enqueue(target string, evt Event) {
	q.mu.Lock()
	defer q.mu.Unlock()

	buf := q.byTarget[target]
	if len(buf) >= q.max {
		dropped := buf[0]
		buf = buf[1:]
		q.log.Warn("queue full, dropping oldest event", logger.Fields(
			logger.FieldTarget, target,
			logger.FieldEvent, string(dropped.Kind),
			logger.FieldQueueDepth, q.max,
		))
	}
	q.byTarget[target] = append(buf, evt)
}

// Drain atomically returns and clears all events queued for target, in
// enqueue order. A drained event is never returned again.
func (q *Queue) Drain(target string) []Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	buf := q.byTarget[target]
	if len(buf) == 0 {
		return nil
	}
	delete(q.byTarget, target)
	return buf
}

// Size returns the number of events queued for target.
func (q *Queue) Size(target string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.byTarget[target])
}

// Clear discards all events queued for target.
func (q *Queue) Clear(target string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.byTarget, target)
}

// Targets returns the identifiers that currently have queued events.
func (q *Queue) Targets() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	targets := make([]string, 0, len(q.byTarget))
	for t := range q.byTarget {
		targets = append(targets, t)
	}
	return targets
}
