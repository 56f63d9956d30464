package queue

import (
	"fmt"
	"testing"

	"github.com/kbukum/analyticskit/logger"
)

func testQueue(max int) *Queue {
	return New(max, logger.NewDefault("test"))
}

func TestEnqueueDrainOrder(t *testing.T) {
	q := testQueue(10)
	for i := 0; i < 5; i++ {
		q.Enqueue("p1", NewEvent("p1", KindTrack, map[string]any{"n": i}))
	}

	events := q.Drain("p1")
	if len(events) != 5 {
		t.Fatalf("expected 5 events, got %d", len(events))
	}
	for i, evt := range events {
		if evt.Payload["n"] != i {
			t.Errorf("event %d out of order: got %v", i, evt.Payload["n"])
		}
	}
}

func TestDrainClearsQueue(t *testing.T) {
	q := testQueue(10)
	q.Enqueue("p1", NewEvent("p1", KindIdentify, nil))

	if got := q.Drain("p1"); len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if got := q.Drain("p1"); got != nil {
		t.Errorf("second drain must return nothing, got %d events", len(got))
	}
	if q.Size("p1") != 0 {
		t.Errorf("expected empty queue after drain, size=%d", q.Size("p1"))
	}
}

func TestCapDropsOldest(t *testing.T) {
	q := testQueue(3)
	for i := 0; i < 5; i++ {
		q.Enqueue("p1", NewEvent("p1", KindTrack, map[string]any{"n": i}))
	}

	events := q.Drain("p1")
	if len(events) != 3 {
		t.Fatalf("expected cap of 3, got %d", len(events))
	}
	// 0 and 1 were evicted; 2, 3, 4 remain in order.
	for i, want := range []int{2, 3, 4} {
		if events[i].Payload["n"] != want {
			t.Errorf("slot %d: expected %d, got %v", i, want, events[i].Payload["n"])
		}
	}
}

func TestPerTargetIsolation(t *testing.T) {
	q := testQueue(2)
	q.Enqueue("a", NewEvent("a", KindTrack, nil))
	q.Enqueue("a", NewEvent("a", KindTrack, nil))
	q.Enqueue("a", NewEvent("a", KindTrack, nil)) // evicts within "a" only
	q.Enqueue("b", NewEvent("b", KindError, nil))

	if q.Size("a") != 2 {
		t.Errorf("expected a capped at 2, got %d", q.Size("a"))
	}
	if q.Size("b") != 1 {
		t.Errorf("expected b unaffected, got %d", q.Size("b"))
	}
}

func TestClear(t *testing.T) {
	q := testQueue(10)
	q.Enqueue("p1", NewEvent("p1", KindScreen, nil))
	q.Clear("p1")
	if q.Size("p1") != 0 {
		t.Error("expected queue cleared")
	}
}

func TestTargets(t *testing.T) {
	q := testQueue(10)
	q.Enqueue("a", NewEvent("a", KindTrack, nil))
	q.Enqueue("b", NewEvent("b", KindRevenue, nil))

	targets := q.Targets()
	if len(targets) != 2 {
		t.Fatalf("expected 2 targets, got %v", targets)
	}
}

func TestEventIDsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		evt := NewEvent("p", KindTrack, nil)
		if seen[evt.ID] {
			t.Fatalf("duplicate event id %s", evt.ID)
		}
		seen[evt.ID] = true
	}
}

func TestZeroCapUsesDefault(t *testing.T) {
	q := testQueue(0)
	for i := 0; i < DefaultMaxPerTarget+10; i++ {
		q.Enqueue("p", NewEvent("p", KindTrack, map[string]any{"n": fmt.Sprint(i)}))
	}
	if q.Size("p") != DefaultMaxPerTarget {
		t.Errorf("expected default cap %d, got %d", DefaultMaxPerTarget, q.Size("p"))
	}
}
