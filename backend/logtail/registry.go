package logtail

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kuboard/app/backend/internal/config"
	"github.com/kuboard/app/backend/internal/parallel"
)

// Tab owns all mutable state for one log subscription: buffer, fetch
// cursor and flags live together so their invariants stay co-located.
type Tab struct {
	Key   Key
	Label string

	order        int
	buffer       *Buffer
	lastSeenLine string
	tailLines    int
	loading      bool
	loadedOnce   bool
	errMsg       string
}

// TabInfo is the read-only snapshot of a tab handed to callers.
type TabInfo struct {
	Key        string `json:"key"`
	Namespace  string `json:"namespace"`
	Pod        string `json:"pod"`
	Container  string `json:"container,omitempty"`
	Label      string `json:"label"`
	Active     bool   `json:"active"`
	Loading    bool   `json:"loading"`
	LoadedOnce bool   `json:"loadedOnce"`
	Error      string `json:"error,omitempty"`
	EntryCount int    `json:"entryCount"`
	TailLines  int    `json:"tailLines"`
}

// RegistryOptions tunes a Registry. Zero values fall back to the defaults
// in internal/config.
type RegistryOptions struct {
	PollInterval     time.Duration
	PollTailLines    int
	InitialTailLines int
	RetentionCap     int
	FetchTimeout     time.Duration

	// OnUpdate fires after a fetch completion touched the tab (including
	// error completions), with the number of entries appended.
	OnUpdate func(key Key, appended int)
	// OnFetchComplete fires after a successful fetch, reporting whether the
	// tab was active at completion time. The follow machine consumes this.
	OnFetchComplete func(key Key, active bool)
	// OnTabsChanged fires when the tab set or active selection changes.
	OnTabsChanged func()
}

// Registry manages the set of open log subscriptions, which one is active,
// and the periodic refresh loop that keeps them current.
type Registry struct {
	engine *Engine
	logger Logger
	opts   RegistryOptions

	mu        sync.Mutex
	tabs      map[Key]*Tab
	seq       int
	active    Key
	hasActive bool

	loopCancel context.CancelFunc
	loopDone   chan struct{}

	baseCtx    context.Context
	baseCancel context.CancelFunc
}

// NewRegistry constructs a Registry around the given engine.
func NewRegistry(engine *Engine, logger Logger, opts RegistryOptions) *Registry {
	if logger == nil {
		logger = noopLogger{}
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = config.LogTailPollInterval
	}
	if opts.PollTailLines <= 0 {
		opts.PollTailLines = config.LogTailPollTailLines
	}
	if opts.InitialTailLines <= 0 {
		opts.InitialTailLines = config.LogTailDefaultTailLines
	}
	if opts.RetentionCap <= 0 {
		opts.RetentionCap = config.LogTailRetentionCap
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = config.LogTailFetchTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		engine:     engine,
		logger:     logger,
		opts:       opts,
		tabs:       make(map[Key]*Tab),
		baseCtx:    ctx,
		baseCancel: cancel,
	}
}

// OpenTab opens (or re-activates) the tab for the given pod/container.
// An existing tab keeps its state and is only made active; a new tab is
// seeded with an initial fetch and the poll loop is started if needed.
// Reports whether a new tab was created.
func (r *Registry) OpenTab(namespace, pod, container string) (Key, bool) {
	key := Key{Namespace: namespace, Pod: pod, Container: container}

	r.mu.Lock()
	if _, exists := r.tabs[key]; exists {
		r.active = key
		r.hasActive = true
		r.mu.Unlock()
		r.notifyTabsChanged()
		return key, false
	}

	label := pod
	if container != "" {
		label = fmt.Sprintf("%s/%s", pod, container)
	}
	r.seq++
	tab := &Tab{
		Key:       key,
		Label:     label,
		order:     r.seq,
		buffer:    NewBuffer(r.opts.RetentionCap),
		tailLines: r.opts.InitialTailLines,
	}
	r.tabs[key] = tab
	r.active = key
	r.hasActive = true
	r.mu.Unlock()

	r.notifyTabsChanged()
	r.StartLoop()
	go r.refreshTab(key, true, tab.tailLines)
	return key, true
}

// CloseTab removes the tab and all of its state. When the closed tab was
// active, the oldest remaining tab becomes active; with no tabs left the
// active pointer is cleared. An in-flight fetch for the closed tab is
// discarded on completion.
func (r *Registry) CloseTab(key Key) error {
	r.mu.Lock()
	if _, ok := r.tabs[key]; !ok {
		r.mu.Unlock()
		return fmt.Errorf("logtail: no tab %s", key)
	}
	delete(r.tabs, key)

	if r.hasActive && r.active == key {
		r.hasActive = false
		var next *Tab
		for _, tab := range r.tabs {
			if next == nil || tab.order < next.order {
				next = tab
			}
		}
		if next != nil {
			r.active = next.Key
			r.hasActive = true
		}
	}
	r.mu.Unlock()

	r.notifyTabsChanged()
	return nil
}

// SetActiveTab selects the tab. Pure selection; no fetch is triggered.
func (r *Registry) SetActiveTab(key Key) error {
	r.mu.Lock()
	if _, ok := r.tabs[key]; !ok {
		r.mu.Unlock()
		return fmt.Errorf("logtail: no tab %s", key)
	}
	r.active = key
	r.hasActive = true
	r.mu.Unlock()

	r.notifyTabsChanged()
	return nil
}

// ActiveTab returns the active tab key, if any.
func (r *Registry) ActiveTab() (Key, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active, r.hasActive
}

// Tabs lists the open tabs in creation order.
func (r *Registry) Tabs() []TabInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	type ordered struct {
		order int
		info  TabInfo
	}
	entries := make([]ordered, 0, len(r.tabs))
	for _, tab := range r.tabs {
		entries = append(entries, ordered{order: tab.order, info: TabInfo{
			Key:        tab.Key.String(),
			Namespace:  tab.Key.Namespace,
			Pod:        tab.Key.Pod,
			Container:  tab.Key.Container,
			Label:      tab.Label,
			Active:     r.hasActive && r.active == tab.Key,
			Loading:    tab.loading,
			LoadedOnce: tab.loadedOnce,
			Error:      tab.errMsg,
			EntryCount: tab.buffer.Len(),
			TailLines:  tab.tailLines,
		}})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].order < entries[j].order })

	infos := make([]TabInfo, 0, len(entries))
	for _, e := range entries {
		infos = append(infos, e.info)
	}
	return infos
}

// Entries returns a copy of the tab's buffered entries.
func (r *Registry) Entries(key Key) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tab, ok := r.tabs[key]
	if !ok {
		return nil, fmt.Errorf("logtail: no tab %s", key)
	}
	return tab.buffer.Entries(), nil
}

// SetDefaultTailLines changes the tail window new tabs are seeded with.
// Existing tabs keep their own window.
func (r *Registry) SetDefaultTailLines(lines int) {
	if lines <= 0 {
		return
	}
	r.mu.Lock()
	r.opts.InitialTailLines = lines
	r.mu.Unlock()
}

// SetTailLines changes the tail window used by the tab's next explicit
// fetch and triggers one immediately. Background polls keep using the
// fixed poll window.
func (r *Registry) SetTailLines(key Key, lines int) error {
	if lines <= 0 {
		return fmt.Errorf("logtail: tail lines must be positive, got %d", lines)
	}
	r.mu.Lock()
	tab, ok := r.tabs[key]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("logtail: no tab %s", key)
	}
	tab.tailLines = lines
	r.mu.Unlock()

	go r.refreshTab(key, false, lines)
	return nil
}

// SetExpanded toggles the truncation state of one entry.
func (r *Registry) SetExpanded(key Key, id int64, expanded bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tab, ok := r.tabs[key]
	if !ok {
		return fmt.Errorf("logtail: no tab %s", key)
	}
	if !tab.buffer.SetExpanded(id, expanded) {
		return fmt.Errorf("logtail: no entry %d in tab %s", id, key)
	}
	return nil
}

// Refresh forces an immediate fetch for the tab using its own tail window.
func (r *Registry) Refresh(key Key) error {
	r.mu.Lock()
	tab, ok := r.tabs[key]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("logtail: no tab %s", key)
	}
	window := tab.tailLines
	r.mu.Unlock()

	go r.refreshTab(key, false, window)
	return nil
}

// Reseed re-runs the initial fetch for every open tab in bounded parallel,
// replacing each buffer. Used after the backing client is rebuilt, when
// anchors from the previous connection are meaningless.
func (r *Registry) Reseed(ctx context.Context) error {
	r.mu.Lock()
	keys := make([]Key, 0, len(r.tabs))
	windows := make(map[Key]int, len(r.tabs))
	for key, tab := range r.tabs {
		keys = append(keys, key)
		windows[key] = tab.tailLines
	}
	r.mu.Unlock()

	return parallel.ForEach(ctx, keys, config.LogTailRefetchParallelism, func(ctx context.Context, key Key) error {
		r.refreshTab(key, true, windows[key])
		return nil
	})
}

// StartLoop starts the periodic refresh loop if it is not already running.
func (r *Registry) StartLoop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loopCancel != nil {
		return
	}
	if r.baseCtx.Err() != nil {
		return
	}
	ctx, cancel := context.WithCancel(r.baseCtx)
	r.loopCancel = cancel
	r.loopDone = make(chan struct{})
	go r.loop(ctx, r.loopDone)
	r.logger.Debug("logtail: poll loop started", "LogTail")
}

// StopLoop stops the periodic refresh loop. In-flight fetches are not
// cancelled; their completions still apply (or are discarded if their tab
// closed in the meantime).
func (r *Registry) StopLoop() {
	r.mu.Lock()
	cancel := r.loopCancel
	done := r.loopDone
	r.loopCancel = nil
	r.loopDone = nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	r.logger.Debug("logtail: poll loop stopped", "LogTail")
}

// LoopRunning reports whether the periodic refresh loop is active.
func (r *Registry) LoopRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loopCancel != nil
}

// Close stops the loop and rejects any further fetches.
func (r *Registry) Close() {
	r.StopLoop()
	r.baseCancel()
}

func (r *Registry) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Fire-and-forget per tab; completions apply to their own
			// tab's state only, so cross-tab ordering never matters.
			r.mu.Lock()
			keys := make([]Key, 0, len(r.tabs))
			for key := range r.tabs {
				keys = append(keys, key)
			}
			r.mu.Unlock()
			for _, key := range keys {
				go r.refreshTab(key, false, r.opts.PollTailLines)
			}
		}
	}
}

// refreshTab runs one fetch/diff cycle for the tab. A failure records a
// per-tab error and leaves the buffer untouched; a completion for a tab
// that no longer exists is silently discarded.
func (r *Registry) refreshTab(key Key, isInitial bool, window int) {
	r.mu.Lock()
	tab, ok := r.tabs[key]
	if !ok {
		r.mu.Unlock()
		return
	}
	tab.loading = true
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(r.baseCtx, r.opts.FetchTimeout)
	lines, err := r.engine.FetchLines(ctx, key, window)
	cancel()

	r.mu.Lock()
	tab, ok = r.tabs[key]
	if !ok {
		// Tab closed while the fetch was in flight.
		r.mu.Unlock()
		return
	}
	tab.loading = false
	if err != nil {
		tab.errMsg = err.Error()
		r.mu.Unlock()
		r.logger.Warn(fmt.Sprintf("logtail: fetch failed for %s: %v", key, err), "LogTail")
		r.notifyUpdate(key, 0)
		return
	}
	tab.errMsg = ""
	appended := r.engine.Apply(tab, lines, isInitial)
	tab.loadedOnce = true
	active := r.hasActive && r.active == key
	r.mu.Unlock()

	r.notifyUpdate(key, appended)
	if r.opts.OnFetchComplete != nil {
		r.opts.OnFetchComplete(key, active)
	}
}

func (r *Registry) notifyUpdate(key Key, appended int) {
	if r.opts.OnUpdate != nil {
		r.opts.OnUpdate(key, appended)
	}
}

func (r *Registry) notifyTabsChanged() {
	if r.opts.OnTabsChanged != nil {
		r.opts.OnTabsChanged()
	}
}
