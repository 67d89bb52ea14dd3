package logtail

import (
	"sync"
	"testing"
	"time"
)

type followProbe struct {
	mu      sync.Mutex
	starts  int
	stops   int
	scrolls int
}

func (p *followProbe) hooks() FollowHooks {
	return FollowHooks{
		StartLoop: func() {
			p.mu.Lock()
			p.starts++
			p.mu.Unlock()
		},
		StopLoop: func() {
			p.mu.Lock()
			p.stops++
			p.mu.Unlock()
		},
		RequestScroll: func() {
			p.mu.Lock()
			p.scrolls++
			p.mu.Unlock()
		},
	}
}

func (p *followProbe) counts() (starts, stops, scrolls int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.starts, p.stops, p.scrolls
}

func TestFollowInitialState(t *testing.T) {
	f := NewFollow(FollowHooks{})
	if f.State() != Following {
		t.Fatalf("expected initial state FOLLOWING, got %s", f.State())
	}
}

func TestScrollAwayPausesAndStopsLoop(t *testing.T) {
	probe := &followProbe{}
	f := NewFollow(probe.hooks())

	f.OnScroll(false)
	if f.State() != Paused {
		t.Fatalf("expected PAUSED after scrolling away, got %s", f.State())
	}
	if _, stops, _ := probe.counts(); stops != 1 {
		t.Fatalf("expected loop stopped once, got %d", stops)
	}
}

func TestScrollToBottomResumesAndRestartsLoopOnce(t *testing.T) {
	probe := &followProbe{}
	f := NewFollow(probe.hooks())

	f.OnScroll(false)
	f.OnScroll(true)
	if f.State() != Following {
		t.Fatalf("expected FOLLOWING after returning to bottom, got %s", f.State())
	}
	starts, _, _ := probe.counts()
	if starts != 1 {
		t.Fatalf("expected loop restarted exactly once, got %d", starts)
	}

	// Repeated at-bottom scrolls while already following must not start
	// duplicate timers.
	f.OnScroll(true)
	f.OnScroll(true)
	if starts, _, _ := probe.counts(); starts != 1 {
		t.Fatalf("expected no duplicate loop starts, got %d", starts)
	}
}

func TestFetchCompleteScrollsOnlyWhileFollowingActiveTab(t *testing.T) {
	probe := &followProbe{}
	f := NewFollow(probe.hooks())
	key := Key{Namespace: "default", Pod: "web-1"}

	f.OnFetchComplete(key, true)
	if _, _, scrolls := probe.counts(); scrolls != 1 {
		t.Fatalf("expected scroll request while following, got %d", scrolls)
	}

	f.OnFetchComplete(key, false)
	if _, _, scrolls := probe.counts(); scrolls != 1 {
		t.Fatalf("expected no scroll for inactive tab, got %d", scrolls)
	}

	f.OnScroll(false)
	f.OnFetchComplete(key, true)
	if _, _, scrolls := probe.counts(); scrolls != 1 {
		t.Fatalf("expected no scroll while paused, got %d", scrolls)
	}
}

func TestToggleDoubleScrollsOnResume(t *testing.T) {
	probe := &followProbe{}
	f := NewFollow(probe.hooks())
	f.settleDelay = 10 * time.Millisecond

	if state := f.Toggle(); state != Paused {
		t.Fatalf("expected toggle to pause, got %s", state)
	}
	if _, stops, _ := probe.counts(); stops != 1 {
		t.Fatalf("expected loop stopped on pause, got %d", stops)
	}

	if state := f.Toggle(); state != Following {
		t.Fatalf("expected toggle to resume, got %s", state)
	}
	deadline := time.Now().Add(time.Second)
	for {
		starts, _, scrolls := probe.counts()
		if starts == 1 && scrolls == 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected 1 start and 2 scrolls (immediate + settled), got starts=%d scrolls=%d", starts, scrolls)
		}
		time.Sleep(time.Millisecond)
	}
}
