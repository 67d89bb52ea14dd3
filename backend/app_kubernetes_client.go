package backend

import (
	"context"
	"fmt"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
)

// initKubernetesClient builds the clientset for the selected kubeconfig and
// context and installs it for the log fetcher to pick up.
func (a *App) initKubernetesClient() error {
	if a.selectedKubeconfig == "" {
		return fmt.Errorf("no kubeconfig selected")
	}

	a.logger.Info("Initializing Kubernetes client", "KubernetesClient")

	loadingRules := &clientcmd.ClientConfigLoadingRules{ExplicitPath: a.selectedKubeconfig}
	overrides := &clientcmd.ConfigOverrides{CurrentContext: a.selectedContext}
	restConfig, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, overrides).ClientConfig()
	if err != nil {
		return fmt.Errorf("failed to build client config: %w", err)
	}

	client, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return fmt.Errorf("failed to create Kubernetes client: %w", err)
	}

	a.setClient(client)
	a.logger.Info("Successfully established Kubernetes client", "KubernetesClient")
	return nil
}

// reseedLogTabs replays the initial fetch for every open log tab. Used after
// the clientset is rebuilt, when the previous fetch anchors are meaningless.
func (a *App) reseedLogTabs(reason string) {
	if len(a.logTabs.Tabs()) == 0 {
		return
	}

	a.logger.Info(fmt.Sprintf("Reseeding log tabs after %s", reason), "LogTail")
	go func() {
		if err := a.logTabs.Reseed(context.Background()); err != nil {
			a.logger.Warn(fmt.Sprintf("Log tab reseed failed: %v", err), "LogTail")
		}
	}()
}
