package logtail

import (
	"sync"
	"time"

	"github.com/kuboard/app/backend/internal/config"
)

// FollowState enumerates the follow machine's states.
type FollowState int

const (
	// Following auto-scrolls the view to the newest content on every fetch.
	Following FollowState = iota
	// Paused leaves the view position untouched while content keeps
	// arriving in the background buffer.
	Paused
)

// String returns the state name.
func (s FollowState) String() string {
	if s == Following {
		return "FOLLOWING"
	}
	return "PAUSED"
}

// FollowHooks connects the machine to the rest of the window.
type FollowHooks struct {
	// StartLoop / StopLoop control the periodic refresh loop.
	StartLoop func()
	StopLoop  func()
	// RequestScroll asks the view to scroll to the bottom.
	RequestScroll func()
}

// Follow governs whether the log view auto-scrolls to newest content or
// stays frozen where the user scrolled to. Initial state is Following.
// The machine has no terminal state; it lives as long as the window.
type Follow struct {
	mu          sync.Mutex
	state       FollowState
	hooks       FollowHooks
	settleDelay time.Duration
}

// NewFollow constructs the machine in the Following state.
func NewFollow(hooks FollowHooks) *Follow {
	return &Follow{
		state:       Following,
		hooks:       hooks,
		settleDelay: config.LogTailScrollSettleDelay,
	}
}

// State returns the current state.
func (f *Follow) State() FollowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// OnScroll handles a user scroll event. Reaching the bottom threshold
// resumes following (restarting the refresh loop if it was stopped);
// leaving it pauses and stops the loop.
func (f *Follow) OnScroll(atBottom bool) {
	f.mu.Lock()
	prev := f.state
	if atBottom {
		f.state = Following
	} else {
		f.state = Paused
	}
	next := f.state
	f.mu.Unlock()

	switch {
	case next == Following && prev == Paused:
		f.startLoop()
	case next == Paused && prev == Following:
		f.stopLoop()
	}
}

// Toggle flips the state from an explicit user action. Entering Following
// restarts the loop and forces a scroll-to-bottom twice: once immediately
// and once after a short settle delay, so the request survives a frontend
// relayout racing the first one. Returns the new state.
func (f *Follow) Toggle() FollowState {
	f.mu.Lock()
	if f.state == Following {
		f.state = Paused
	} else {
		f.state = Following
	}
	next := f.state
	f.mu.Unlock()

	if next == Following {
		f.startLoop()
		f.requestScroll()
		if f.hooks.RequestScroll != nil {
			time.AfterFunc(f.settleDelay, f.hooks.RequestScroll)
		}
	} else {
		f.stopLoop()
	}
	return next
}

// OnFetchComplete reacts to a finished fetch: while following, a buffer
// update on the active tab scrolls the view to the bottom. Anything else
// is a no-op, which is the entire point of being paused.
func (f *Follow) OnFetchComplete(_ Key, active bool) {
	f.mu.Lock()
	following := f.state == Following
	f.mu.Unlock()

	if following && active {
		f.requestScroll()
	}
}

func (f *Follow) startLoop() {
	if f.hooks.StartLoop != nil {
		f.hooks.StartLoop()
	}
}

func (f *Follow) stopLoop() {
	if f.hooks.StopLoop != nil {
		f.hooks.StopLoop()
	}
}

func (f *Follow) requestScroll() {
	if f.hooks.RequestScroll != nil {
		f.hooks.RequestScroll()
	}
}
