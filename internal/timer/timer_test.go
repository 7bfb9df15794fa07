package timer

import (
	"testing"
	"time"
)

// fakeClock lets tests fire timers synchronously instead of sleeping,
// matching the deterministic-clock-injection style the engine's own
// tests use for multipurpose/suspend state machines.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) AfterFunc(d time.Duration, f func()) StoppableTimer {
	return &fakeTimer{fire: f}
}

type fakeTimer struct {
	fire    func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func TestArmDeliversFired(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	sched := New(clock)

	id := sched.Arm(time.Second, CategoryMultipurpose, "space")

	// Simulate the clock's AfterFunc firing immediately, as a fakeTimer
	// would if the test invoked it directly.
	sched.deliver(id)

	select {
	case f := <-sched.Fired():
		if f.ID != id {
			t.Fatalf("got ID %v, want %v", f.ID, id)
		}
		if f.Category != CategoryMultipurpose {
			t.Fatalf("got category %v, want %v", f.Category, CategoryMultipurpose)
		}
		if f.Key != "space" {
			t.Fatalf("got key %v, want %q", f.Key, "space")
		}
	default:
		t.Fatal("expected a Fired delivery")
	}
}

func TestCancelPreventsDelivery(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	sched := New(clock)

	id := sched.Arm(time.Second, CategorySuspend, "alt")
	sched.Cancel(id)
	sched.deliver(id) // simulate a late callback racing the cancel

	select {
	case f := <-sched.Fired():
		t.Fatalf("expected no delivery after cancel, got %+v", f)
	default:
	}

	if got := sched.Pending(); got != 0 {
		t.Fatalf("Pending() = %d, want 0", got)
	}
}

func TestCancelAllDisarmsEverything(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	sched := New(clock)

	ids := []ID{
		sched.Arm(time.Second, CategoryMultipurpose, "a"),
		sched.Arm(2*time.Second, CategorySuspend, "ctrl"),
		sched.Arm(3*time.Second, CategoryEmergencyEject, nil),
	}

	sched.CancelAll()

	if got := sched.Pending(); got != 0 {
		t.Fatalf("Pending() = %d, want 0", got)
	}

	for _, id := range ids {
		sched.deliver(id)
	}
	select {
	case f := <-sched.Fired():
		t.Fatalf("expected no delivery after CancelAll, got %+v", f)
	default:
	}
}

func TestDeliverIgnoresUnknownID(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	sched := New(clock)

	sched.deliver(ID(999)) // never armed

	select {
	case f := <-sched.Fired():
		t.Fatalf("expected no delivery, got %+v", f)
	default:
	}
}

func TestPendingTracksArmAndCancel(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	sched := New(clock)

	id1 := sched.Arm(time.Second, CategoryDiagnosticsDump, nil)
	_ = sched.Arm(time.Second, CategorySubmapTimeout, nil)

	if got := sched.Pending(); got != 2 {
		t.Fatalf("Pending() = %d, want 2", got)
	}

	sched.Cancel(id1)
	if got := sched.Pending(); got != 1 {
		t.Fatalf("Pending() = %d, want 1", got)
	}
}

func TestCategoryString(t *testing.T) {
	cases := map[Category]string{
		CategoryMultipurpose:    "multipurpose-per-key",
		CategorySuspend:         "suspend-per-modifier",
		CategoryEmergencyEject:  "emergency-eject",
		CategoryDiagnosticsDump: "diagnostics-dump",
		CategorySubmapTimeout:   "submap-timeout",
	}
	for cat, want := range cases {
		if got := cat.String(); got != want {
			t.Errorf("Category(%d).String() = %q, want %q", cat, got, want)
		}
	}
}
