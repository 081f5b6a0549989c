package sitebridge

import (
	"testing"
	"time"
)

func TestLoginLimiterBlocksAfterFailures(t *testing.T) {
	l := newLoginLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !l.Check("10.0.0.1") {
			t.Fatalf("check %d should pass", i+1)
		}
		l.Record("10.0.0.1")
	}
	if l.Check("10.0.0.1") {
		t.Error("address should be blocked after max failures")
	}

	// Other addresses are tracked independently.
	if !l.Check("10.0.0.2") {
		t.Error("fresh address should be allowed")
	}
}

func TestLoginLimiterCheckDoesNotConsumeBudget(t *testing.T) {
	l := newLoginLimiter(2, time.Minute)

	// Checks alone never block: only recorded failures count, so repeated
	// successful logins cannot lock an address out.
	for i := 0; i < 20; i++ {
		if !l.Check("10.0.0.1") {
			t.Fatalf("check %d should pass with no failures recorded", i+1)
		}
	}
}

func TestLoginLimiterWindowExpiry(t *testing.T) {
	l := newLoginLimiter(1, 20*time.Millisecond)

	l.Record("10.0.0.1")
	if l.Check("10.0.0.1") {
		t.Fatal("address should be blocked inside the window")
	}

	time.Sleep(30 * time.Millisecond)
	if !l.Check("10.0.0.1") {
		t.Error("address should be allowed again after the window")
	}
}
