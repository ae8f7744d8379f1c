package auditlog

import (
	"testing"
	"time"
)

func TestRateLimiterCapsWindow(t *testing.T) {
	now := time.Unix(1000, 0)
	rl := NewRateLimiter(3, time.Minute)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !rl.Allow() {
			t.Fatalf("event %d rejected below the cap", i+1)
		}
	}
	if rl.Allow() {
		t.Fatal("event above the cap allowed")
	}

	// The window slides: old hits expire.
	now = now.Add(61 * time.Second)
	if !rl.Allow() {
		t.Fatal("event rejected after the window expired")
	}
}

func TestRateLimiterPartialExpiry(t *testing.T) {
	now := time.Unix(1000, 0)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	rl.Allow()
	now = now.Add(40 * time.Second)
	rl.Allow()
	if rl.Allow() {
		t.Fatal("cap not enforced with both hits inside the window")
	}

	// First hit falls out, second is still counted.
	now = now.Add(30 * time.Second)
	if !rl.Allow() {
		t.Fatal("slot freed by the expired hit was not granted")
	}
	if rl.Allow() {
		t.Fatal("window still holds two hits, third allowed")
	}
}

func TestCooldownMapPerKey(t *testing.T) {
	now := time.Unix(1000, 0)
	cm := newCooldownMap(time.Second)
	cm.now = func() time.Time { return now }

	if !cm.Ready("u1") {
		t.Fatal("first event for a key was throttled")
	}
	if cm.Ready("u1") {
		t.Fatal("second immediate event for the same key passed")
	}
	if !cm.Ready("u2") {
		t.Fatal("different key throttled by u1's cooldown")
	}

	now = now.Add(1100 * time.Millisecond)
	if !cm.Ready("u1") {
		t.Fatal("key still throttled after the cooldown elapsed")
	}
}
