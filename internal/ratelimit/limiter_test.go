package ratelimit

import (
	"testing"
	"time"
)

func TestLimiter_BurstThenDeny(t *testing.T) {
	l := PerHour(1000, 3)
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	for i := 0; i < 3; i++ {
		if !l.Allow("1.2.3.4") {
			t.Fatalf("request %d should pass within burst", i)
		}
	}
	if l.Allow("1.2.3.4") {
		t.Fatalf("request beyond burst should be denied")
	}
	if !l.Allow("5.6.7.8") {
		t.Fatalf("other clients have their own bucket")
	}

	// 1000/hour refills one token every 3.6s.
	fixed = fixed.Add(4 * time.Second)
	if !l.Allow("1.2.3.4") {
		t.Fatalf("expected a refilled token")
	}
}

func TestLimiter_SweepForgetsIdleClients(t *testing.T) {
	l := PerHour(10, 1)
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	l.Allow("a")
	fixed = fixed.Add(2 * time.Hour)
	l.Allow("b")
	l.Sweep()

	if _, ok := l.clients["a"]; ok {
		t.Fatalf("expected idle client to be swept")
	}
	if _, ok := l.clients["b"]; !ok {
		t.Fatalf("expected recent client to stay")
	}
}

func TestLimiter_NonPositiveRateDisablesLimiting(t *testing.T) {
	for _, n := range []int{0, -5} {
		l := PerHour(n, 1)
		for i := 0; i < 100; i++ {
			if !l.Allow("1.2.3.4") {
				t.Fatalf("PerHour(%d): request %d denied", n, i)
			}
		}
	}
}
