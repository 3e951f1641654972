package server

import (
	"testing"
	"time"
)

func TestActionLimiterEnforcesCap(t *testing.T) {
	al := NewActionLimiter(2, time.Hour, nil)
	defer al.Close()

	if !al.Allow("1.2.3.4", "generate") {
		t.Fatal("first attempt should be allowed")
	}
	if !al.Allow("1.2.3.4", "generate") {
		t.Fatal("second attempt should be allowed")
	}
	if al.Allow("1.2.3.4", "generate") {
		t.Fatal("third attempt should be denied")
	}
}

func TestActionLimiterKeysByClientAndAction(t *testing.T) {
	al := NewActionLimiter(1, time.Hour, nil)
	defer al.Close()

	if !al.Allow("1.2.3.4", "generate") {
		t.Fatal("first client should be allowed")
	}
	if al.Allow("1.2.3.4", "generate") {
		t.Fatal("first client should be capped")
	}
	if !al.Allow("5.6.7.8", "generate") {
		t.Error("a different client must have its own budget")
	}
	if !al.Allow("1.2.3.4", "export") {
		t.Error("a different action must have its own budget")
	}
}

func TestActionLimiterWindowRollover(t *testing.T) {
	al := NewActionLimiter(1, 30*time.Millisecond, nil)
	defer al.Close()

	if !al.Allow("1.2.3.4", "generate") {
		t.Fatal("first attempt should be allowed")
	}
	if al.Allow("1.2.3.4", "generate") {
		t.Fatal("second attempt inside the window should be denied")
	}

	time.Sleep(40 * time.Millisecond)

	if !al.Allow("1.2.3.4", "generate") {
		t.Error("attempt after the window rolls over should be allowed")
	}
}

func TestActionLimiterDefaults(t *testing.T) {
	al := NewActionLimiter(0, 0, nil)
	defer al.Close()

	stats := al.GetStats()
	if stats["limit"] != 3 {
		t.Errorf("default limit = %v, want 3", stats["limit"])
	}
	if stats["window"] != time.Hour.String() {
		t.Errorf("default window = %v, want %s", stats["window"], time.Hour)
	}
}

func TestActionLimiterCleanupDropsExpiredWindows(t *testing.T) {
	al := NewActionLimiter(1, 10*time.Millisecond, nil)
	defer al.Close()

	al.Allow("1.2.3.4", "generate")
	al.Allow("5.6.7.8", "generate")

	time.Sleep(20 * time.Millisecond)
	al.cleanup()

	stats := al.GetStats()
	if stats["active_windows"] != 0 {
		t.Errorf("active_windows = %v after cleanup, want 0", stats["active_windows"])
	}
}
