package ratelimit

import (
	"testing"
	"time"
)

func TestLimiterBurstThenDeny(t *testing.T) {
	l := NewLimiter(10, 5)

	for i := 0; i < 5; i++ {
		if !l.Allow() {
			t.Fatalf("request %d denied within burst", i)
		}
	}
	if l.Allow() {
		t.Fatal("request allowed after burst exhausted")
	}
}

func TestLimiterRefills(t *testing.T) {
	l := NewLimiter(100, 1)

	if !l.Allow() {
		t.Fatal("first request denied")
	}
	if l.Allow() {
		t.Fatal("request allowed with empty bucket")
	}

	time.Sleep(20 * time.Millisecond) // 100/s refills one token in 10ms
	if !l.Allow() {
		t.Fatal("request denied after refill window")
	}
}

func TestLimiterCapsAtBurst(t *testing.T) {
	l := NewLimiter(1000, 2)
	time.Sleep(20 * time.Millisecond)

	// However long the idle period, only burst tokens are available.
	allowed := 0
	for i := 0; i < 10; i++ {
		if l.Allow() {
			allowed++
		}
	}
	if allowed != 2 {
		t.Fatalf("allowed %d requests after idle, want 2", allowed)
	}
}
