package metrics

import (
	"testing"
	"time"
)

func TestCollectorSnapshot(t *testing.T) {
	c := New()
	c.Record(200, 10*time.Millisecond)
	c.Record(500, 30*time.Millisecond)
	c.Record(429, 0)

	snap := c.Snapshot()
	if snap["requestsTotal"].(uint64) != 3 {
		t.Fatalf("expected 3 requests, got %v", snap["requestsTotal"])
	}
	if snap["errorsTotal"].(uint64) != 1 {
		t.Fatalf("expected 1 error, got %v", snap["errorsTotal"])
	}
	if snap["rateLimitedTotal"].(uint64) != 1 {
		t.Fatalf("expected 1 rate limited, got %v", snap["rateLimitedTotal"])
	}
	if avg := snap["avgDurationMs"].(float64); avg < 13 || avg > 14 {
		t.Fatalf("unexpected average %v", avg)
	}
}

func TestCollectorTransitions(t *testing.T) {
	c := New()
	c.RecordTransition("ok")
	c.RecordTransition("ok")
	c.RecordTransition("unauthorized")

	transitions := c.Snapshot()["transitions"].(map[string]uint64)
	if transitions["ok"] != 2 || transitions["unauthorized"] != 1 {
		t.Fatalf("unexpected transitions: %v", transitions)
	}

	var nilCollector *Collector
	nilCollector.RecordTransition("ok")
}
