package backend

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
)

// kubeconfigSkipSuffixes are filename suffixes that mark editor droppings and
// backups rather than kubeconfigs.
var kubeconfigSkipSuffixes = []string{
	".bak", ".backup", ".old", ".tmp", ".swp", ".swo",
	"~", ".orig", ".rej", ".lock", ".log",
}

// shouldSkipKubeconfigName reports whether a filename in ~/.kube is clearly
// not a kubeconfig.
func shouldSkipKubeconfigName(name string) bool {
	if strings.HasPrefix(name, ".") && name != ".kubeconfig" {
		return true
	}
	lower := strings.ToLower(name)
	for _, suffix := range kubeconfigSkipSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return strings.Contains(lower, "cache") ||
		strings.Contains(lower, "token") ||
		strings.Contains(lower, "credential")
}

// discoverKubeconfigs scans ~/.kube (non-recursive) and records one entry per
// context of every file that parses as a kubeconfig.
func (a *App) discoverKubeconfigs() error {
	a.logger.Debug("Starting kubeconfig discovery", "KubeconfigManager")
	a.availableKubeconfigs = []KubeconfigInfo{}

	home := homedir.HomeDir()
	if home == "" {
		a.logger.Error("Could not find home directory for kubeconfig discovery", "KubeconfigManager")
		return fmt.Errorf("could not find home directory")
	}

	kubeDir := filepath.Join(home, ".kube")
	if _, err := os.Stat(kubeDir); os.IsNotExist(err) {
		a.logger.Warn(".kube directory not found - no kubeconfigs available", "KubeconfigManager")
		return fmt.Errorf(".kube directory not found")
	}

	entries, err := os.ReadDir(kubeDir)
	if err != nil {
		a.logger.Error(fmt.Sprintf("Failed to read .kube directory: %v", err), "KubeconfigManager")
		return fmt.Errorf("failed to read .kube directory: %w", err)
	}

	for _, d := range entries {
		if d.IsDir() || shouldSkipKubeconfigName(d.Name()) {
			continue
		}

		path := filepath.Join(kubeDir, d.Name())
		config, err := clientcmd.LoadFromFile(path)
		if err != nil {
			a.logger.Debug(fmt.Sprintf("Skipping %s - not a valid kubeconfig: %v", path, err), "KubeconfigManager")
			continue
		}
		if len(config.Clusters) == 0 || len(config.Contexts) == 0 {
			a.logger.Debug(fmt.Sprintf("Skipping %s - no clusters or contexts found", path), "KubeconfigManager")
			continue
		}

		a.logger.Info(fmt.Sprintf("Found valid kubeconfig: %s (%d clusters, %d contexts)", path, len(config.Clusters), len(config.Contexts)), "KubeconfigManager")

		displayName := d.Name()
		isDefault := d.Name() == "config"
		if isDefault {
			displayName = "default"
		}

		for contextName := range config.Contexts {
			a.availableKubeconfigs = append(a.availableKubeconfigs, KubeconfigInfo{
				Name:             displayName,
				Path:             path,
				Context:          contextName,
				IsDefault:        isDefault,
				IsCurrentContext: contextName == config.CurrentContext,
			})
		}
	}

	return nil
}

// GetKubeconfigs returns the list of available kubeconfig contexts,
// discovering them on first use.
func (a *App) GetKubeconfigs() ([]KubeconfigInfo, error) {
	if len(a.availableKubeconfigs) == 0 {
		if err := a.discoverKubeconfigs(); err != nil {
			return nil, err
		}
	}
	return a.availableKubeconfigs, nil
}

// GetSelectedKubeconfig returns the current selection in "path:context" form.
func (a *App) GetSelectedKubeconfig() string {
	if a.selectedContext != "" {
		return a.selectedKubeconfig + ":" + a.selectedContext
	}
	return a.selectedKubeconfig
}

// SetKubeconfig switches to a different kubeconfig file and context. The
// selection must be in "path:context" form and name a discovered context.
// Open log tabs are reseeded against the new cluster.
func (a *App) SetKubeconfig(selection string) error {
	a.logger.Info(fmt.Sprintf("Switching kubeconfig to: %s", selection), "KubeconfigManager")

	path, contextName, err := parseKubeconfigSelection(selection)
	if err != nil {
		a.logger.Error(err.Error(), "KubeconfigManager")
		return err
	}

	found := false
	for _, kc := range a.availableKubeconfigs {
		if kc.Path == path && kc.Context == contextName {
			found = true
			break
		}
	}
	if !found {
		a.logger.Error(fmt.Sprintf("Kubeconfig context not found: %s in %s", contextName, path), "KubeconfigManager")
		return fmt.Errorf("kubeconfig context not found: %s in %s", contextName, path)
	}

	if _, err := clientcmd.LoadFromFile(path); err != nil {
		a.logger.Error(fmt.Sprintf("Invalid kubeconfig file %s: %v", path, err), "KubeconfigManager")
		return fmt.Errorf("invalid kubeconfig file: %w", err)
	}

	a.selectedKubeconfig = path
	a.selectedContext = contextName
	a.setClient(nil)

	if a.appSettings == nil {
		a.appSettings = getDefaultAppSettings()
	}
	a.appSettings.SelectedKubeconfig = path + ":" + contextName
	if err := a.saveAppSettings(); err != nil {
		a.logger.Warn(fmt.Sprintf("Failed to save kubeconfig selection: %v", err), "KubeconfigManager")
	}

	if err := a.initKubernetesClient(); err != nil {
		a.logger.Error(fmt.Sprintf("Failed to initialize client with new kubeconfig: %v", err), "KubeconfigManager")
		return err
	}

	a.reseedLogTabs("kubeconfig switch")
	a.updateKubeconfigWatchTargets()

	a.logger.Info(fmt.Sprintf("Successfully switched to kubeconfig %s with context %s", path, contextName), "KubeconfigManager")
	return nil
}

// parseKubeconfigSelection splits a "path:context" selection string.
func parseKubeconfigSelection(selection string) (path, context string, err error) {
	parts := strings.SplitN(selection, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid selection format %q, expected 'path:context'", selection)
	}
	return parts[0], parts[1], nil
}

// restoreKubeconfigSelection applies the persisted selection, falling back to
// the current context of the default kubeconfig when nothing usable is saved.
func (a *App) restoreKubeconfigSelection() {
	if a.appSettings != nil && a.appSettings.SelectedKubeconfig != "" {
		if path, contextName, err := parseKubeconfigSelection(a.appSettings.SelectedKubeconfig); err == nil {
			for _, kc := range a.availableKubeconfigs {
				if kc.Path == path && kc.Context == contextName {
					a.selectedKubeconfig = path
					a.selectedContext = contextName
					return
				}
			}
			a.logger.Warn(fmt.Sprintf("Saved kubeconfig selection no longer exists: %s", a.appSettings.SelectedKubeconfig), "KubeconfigManager")
		}
	}

	for _, kc := range a.availableKubeconfigs {
		if kc.IsDefault && kc.IsCurrentContext {
			a.selectedKubeconfig = kc.Path
			a.selectedContext = kc.Context
			return
		}
	}
	if len(a.availableKubeconfigs) > 0 {
		a.selectedKubeconfig = a.availableKubeconfigs[0].Path
		a.selectedContext = a.availableKubeconfigs[0].Context
	}
}
