package backend

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/kuboard/app/backend/internal/config"
)

// kubeconfigWatcher watches the directories holding kubeconfig files and
// reports changed paths after a debounce window, so editor save bursts and
// credential-helper rewrites collapse into one notification.
type kubeconfigWatcher struct {
	logger    *Logger
	watcher   *fsnotify.Watcher
	onChange  func([]string)
	stopCh    chan struct{}
	stoppedCh chan struct{}

	mu      sync.Mutex
	watched map[string]struct{}
}

func newKubeconfigWatcher(logger *Logger, onChange func([]string)) (*kubeconfigWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &kubeconfigWatcher{
		logger:    logger,
		watcher:   fsWatcher,
		onChange:  onChange,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
		watched:   make(map[string]struct{}),
	}

	go w.eventLoop()
	return w, nil
}

func (w *kubeconfigWatcher) eventLoop() {
	defer close(w.stoppedCh)

	var debounceTimer *time.Timer
	var debounceCh <-chan time.Time
	changedPaths := make(map[string]struct{})

	flush := func() {
		if len(changedPaths) == 0 || w.onChange == nil {
			return
		}
		paths := make([]string, 0, len(changedPaths))
		for p := range changedPaths {
			paths = append(paths, p)
		}
		changedPaths = make(map[string]struct{})
		w.onChange(paths)
	}

	for {
		select {
		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isRelevantFSEvent(event) {
				continue
			}
			if shouldSkipKubeconfigName(filepath.Base(event.Name)) {
				continue
			}

			changedPaths[filepath.Clean(event.Name)] = struct{}{}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.NewTimer(config.KubeconfigWatcherDebounce)
			debounceCh = debounceTimer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn(fmt.Sprintf("kubeconfig watcher error: %v", err), "KubeconfigWatcher")

		case <-debounceCh:
			debounceCh = nil
			flush()
		}
	}
}

func isRelevantFSEvent(event fsnotify.Event) bool {
	return event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) != 0
}

// updateWatchedDirs reconciles the watched directory set. Directories that no
// longer exist are dropped silently.
func (w *kubeconfigWatcher) updateWatchedDirs(dirs []string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	desired := make(map[string]struct{}, len(dirs))
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		desired[filepath.Clean(dir)] = struct{}{}
	}

	for dir := range w.watched {
		if _, ok := desired[dir]; ok {
			continue
		}
		_ = w.watcher.Remove(dir)
		delete(w.watched, dir)
	}
	for dir := range desired {
		if _, ok := w.watched[dir]; ok {
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			w.logger.Warn("Failed to watch directory: "+dir, "KubeconfigWatcher")
			continue
		}
		w.watched[dir] = struct{}{}
	}
}

func (w *kubeconfigWatcher) stop() {
	select {
	case <-w.stopCh:
		return
	default:
		close(w.stopCh)
	}
	_ = w.watcher.Close()
	<-w.stoppedCh
}

// startKubeconfigWatcher begins watching ~/.kube and the directory of the
// selected kubeconfig for changes.
func (a *App) startKubeconfigWatcher() {
	if a.kubeconfigWatcher != nil {
		return
	}

	watcher, err := newKubeconfigWatcher(a.logger, a.onKubeconfigFilesChanged)
	if err != nil {
		a.logger.Warn(fmt.Sprintf("Failed to start kubeconfig watcher: %v", err), "KubeconfigWatcher")
		return
	}
	a.kubeconfigWatcher = watcher
	a.updateKubeconfigWatchTargets()
}

func (a *App) stopKubeconfigWatcher() {
	if a.kubeconfigWatcher == nil {
		return
	}
	a.kubeconfigWatcher.stop()
	a.kubeconfigWatcher = nil
}

func (a *App) updateKubeconfigWatchTargets() {
	if a.kubeconfigWatcher == nil {
		return
	}

	var dirs []string
	if home := os.Getenv("HOME"); home != "" {
		dirs = append(dirs, filepath.Join(home, ".kube"))
	}
	if a.selectedKubeconfig != "" {
		dirs = append(dirs, filepath.Dir(a.selectedKubeconfig))
	}
	a.kubeconfigWatcher.updateWatchedDirs(dirs)
}

// onKubeconfigFilesChanged refreshes discovery and, when the selected file
// itself changed, rebuilds the clientset and reseeds every open log tab.
func (a *App) onKubeconfigFilesChanged(paths []string) {
	a.logger.Info(fmt.Sprintf("Kubeconfig change detected (%d file(s))", len(paths)), "KubeconfigWatcher")

	if err := a.discoverKubeconfigs(); err != nil {
		a.logger.Warn(fmt.Sprintf("Kubeconfig re-discovery failed: %v", err), "KubeconfigWatcher")
	}
	a.emitEvent("kubeconfigs-changed")

	selectedChanged := false
	for _, p := range paths {
		if filepath.Clean(p) == filepath.Clean(a.selectedKubeconfig) {
			selectedChanged = true
			break
		}
	}
	if !selectedChanged {
		return
	}

	if err := a.initKubernetesClient(); err != nil {
		a.logger.Error(fmt.Sprintf("Failed to rebuild client after kubeconfig change: %v", err), "KubeconfigWatcher")
		return
	}
	a.reseedLogTabs("kubeconfig file change")
}
