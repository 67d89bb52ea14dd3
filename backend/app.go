package backend

import (
	"context"
	"errors"
	"sync"

	"github.com/kuboard/app/backend/internal/config"
	"github.com/kuboard/app/backend/logtail"
	"k8s.io/client-go/kubernetes"
)

// App provides the backend façade exposed to Wails.
type App struct {
	Ctx context.Context

	clientMu sync.Mutex
	client   kubernetes.Interface

	selectedKubeconfig   string
	selectedContext      string
	availableKubeconfigs []KubeconfigInfo

	windowSettings *WindowSettings
	appSettings    *AppSettings
	logger         *Logger

	logTabs   *logtail.Registry
	logFollow *logtail.Follow
	logSearch *logtail.Search

	kubeconfigWatcher *kubeconfigWatcher

	sidebarVisible   bool
	logsPanelVisible bool

	eventEmitter func(context.Context, string, ...interface{})
}

// NewApp constructs a backend App with sane defaults.
func NewApp() *App {
	app := &App{
		logger:         NewLogger(config.AppLogMaxEntries),
		sidebarVisible: true,
		eventEmitter:   func(context.Context, string, ...interface{}) {},
	}
	app.setupEnvironment()
	app.initLogTail()
	return app
}

// initLogTail wires the log tab registry, follow machine and search overlay
// together. The fetcher reads the clientset through currentClient so a
// kubeconfig switch is picked up by the next fetch without re-wiring.
func (a *App) initLogTail() {
	fetcher := logtail.FetcherFunc(func(ctx context.Context, namespace, pod, container string, tailLines int) (string, error) {
		client := a.currentClient()
		if client == nil {
			return "", errors.New("no cluster connection")
		}
		kubeFetcher, err := logtail.NewKubeFetcher(client)
		if err != nil {
			return "", err
		}
		return kubeFetcher.FetchPodLogs(ctx, namespace, pod, container, tailLines)
	})

	engine := logtail.NewEngine(fetcher, a.logger)
	a.logTabs = logtail.NewRegistry(engine, a.logger, logtail.RegistryOptions{
		OnUpdate: func(key logtail.Key, appended int) {
			a.emitEvent("logtail:updated", map[string]any{
				"key":      key.String(),
				"appended": appended,
			})
		},
		OnFetchComplete: func(key logtail.Key, active bool) {
			a.logFollow.OnFetchComplete(key, active)
		},
		OnTabsChanged: func() {
			a.emitEvent("logtail:tabs-changed")
		},
	})
	a.logFollow = logtail.NewFollow(logtail.FollowHooks{
		StartLoop: func() { a.logTabs.StartLoop() },
		StopLoop:  func() { a.logTabs.StopLoop() },
		RequestScroll: func() {
			a.emitEvent("logtail:scroll-bottom")
		},
	})
	a.logSearch = logtail.NewSearch()
}

func (a *App) currentClient() kubernetes.Interface {
	a.clientMu.Lock()
	defer a.clientMu.Unlock()
	return a.client
}

func (a *App) setClient(client kubernetes.Interface) {
	a.clientMu.Lock()
	defer a.clientMu.Unlock()
	a.client = client
}

func (a *App) emitEvent(name string, args ...interface{}) {
	if a == nil || a.eventEmitter == nil || a.Ctx == nil {
		return
	}
	a.eventEmitter(a.Ctx, name, args...)
}
