package backend

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeTempKubeconfig writes a minimal valid kubeconfig with the given contexts.
func writeTempKubeconfig(t *testing.T, path string, contexts ...string) {
	t.Helper()

	if len(contexts) == 0 {
		contexts = []string{"default"}
	}

	content := "apiVersion: v1\nkind: Config\npreferences: {}\nclusters:\n- cluster:\n    insecure-skip-tls-verify: true\n    server: https://127.0.0.1:6443\n  name: test-cluster\nusers:\n- name: test-user\n  user:\n    token: test-token\ncontexts:\n"
	for _, ctx := range contexts {
		content += "- context:\n    cluster: test-cluster\n    user: test-user\n  name: " + ctx + "\n"
	}
	content += "current-context: " + contexts[0] + "\n"

	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func hasKubeconfig(configs []KubeconfigInfo, path, context string) bool {
	for _, config := range configs {
		if config.Path == path && config.Context == context {
			return true
		}
	}
	return false
}

func setupKubeDir(t *testing.T) string {
	t.Helper()
	setTestConfigEnv(t)
	kubeDir := filepath.Join(os.Getenv("HOME"), ".kube")
	require.NoError(t, os.MkdirAll(kubeDir, 0o755))
	return kubeDir
}

func TestDiscoverKubeconfigsFindsContexts(t *testing.T) {
	kubeDir := setupKubeDir(t)
	app := newTestAppWithDefaults(t)

	defaultPath := filepath.Join(kubeDir, "config")
	stagingPath := filepath.Join(kubeDir, "staging")
	writeTempKubeconfig(t, defaultPath, "prod", "dev")
	writeTempKubeconfig(t, stagingPath, "staging")

	// Files that must be skipped outright.
	require.NoError(t, os.WriteFile(filepath.Join(kubeDir, "config.bak"), []byte("junk"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(kubeDir, "cache-data"), []byte("junk"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(kubeDir, "notes.txt"), []byte("not yaml at all: [["), 0o644))

	require.NoError(t, app.discoverKubeconfigs())

	require.Len(t, app.availableKubeconfigs, 3)
	require.True(t, hasKubeconfig(app.availableKubeconfigs, defaultPath, "prod"))
	require.True(t, hasKubeconfig(app.availableKubeconfigs, defaultPath, "dev"))
	require.True(t, hasKubeconfig(app.availableKubeconfigs, stagingPath, "staging"))

	for _, kc := range app.availableKubeconfigs {
		if kc.Path == defaultPath {
			require.True(t, kc.IsDefault)
			require.Equal(t, "default", kc.Name)
			require.Equal(t, kc.Context == "prod", kc.IsCurrentContext)
		}
	}
}

func TestDiscoverKubeconfigsMissingKubeDir(t *testing.T) {
	setTestConfigEnv(t)
	app := newTestAppWithDefaults(t)

	require.Error(t, app.discoverKubeconfigs())
	require.Empty(t, app.availableKubeconfigs)
}

func TestGetKubeconfigsDiscoversOnFirstUse(t *testing.T) {
	kubeDir := setupKubeDir(t)
	app := newTestAppWithDefaults(t)
	writeTempKubeconfig(t, filepath.Join(kubeDir, "config"), "prod")

	configs, err := app.GetKubeconfigs()
	require.NoError(t, err)
	require.Len(t, configs, 1)
}

func TestShouldSkipKubeconfigName(t *testing.T) {
	skip := []string{".hidden", "config.bak", "backup.old", "editor.swp", "trailing~", "token-cache", "my-credentials", "gke_gcloud_auth_token"}
	for _, name := range skip {
		require.True(t, shouldSkipKubeconfigName(name), "expected %q to be skipped", name)
	}

	keep := []string{"config", "staging", "prod.yaml", ".kubeconfig"}
	for _, name := range keep {
		require.False(t, shouldSkipKubeconfigName(name), "expected %q to be kept", name)
	}
}

func TestGetSelectedKubeconfigFormatsSelection(t *testing.T) {
	app := newTestAppWithDefaults(t)
	require.Equal(t, "", app.GetSelectedKubeconfig())

	app.selectedKubeconfig = "/home/user/.kube/config"
	app.selectedContext = "prod"
	require.Equal(t, "/home/user/.kube/config:prod", app.GetSelectedKubeconfig())
}

func TestParseKubeconfigSelection(t *testing.T) {
	path, context, err := parseKubeconfigSelection("/home/user/.kube/config:prod")
	require.NoError(t, err)
	require.Equal(t, "/home/user/.kube/config", path)
	require.Equal(t, "prod", context)

	for _, invalid := range []string{"", "nocontext", ":ctx", "/path:"} {
		_, _, err := parseKubeconfigSelection(invalid)
		require.Error(t, err, "expected %q to be rejected", invalid)
	}
}

func TestSetKubeconfigRejectsUnknownContext(t *testing.T) {
	kubeDir := setupKubeDir(t)
	app := newTestAppWithDefaults(t)
	path := filepath.Join(kubeDir, "config")
	writeTempKubeconfig(t, path, "prod")
	require.NoError(t, app.discoverKubeconfigs())

	require.Error(t, app.SetKubeconfig(path+":missing"))
	require.Error(t, app.SetKubeconfig("garbage"))
}

func TestSetKubeconfigSwitchesAndPersists(t *testing.T) {
	kubeDir := setupKubeDir(t)
	app := newTestAppWithDefaults(t)
	path := filepath.Join(kubeDir, "config")
	writeTempKubeconfig(t, path, "prod", "dev")
	require.NoError(t, app.discoverKubeconfigs())

	require.NoError(t, app.SetKubeconfig(path+":dev"))
	require.Equal(t, path, app.selectedKubeconfig)
	require.Equal(t, "dev", app.selectedContext)
	require.NotNil(t, app.currentClient())

	reloaded := newTestAppWithDefaults(t)
	require.NoError(t, reloaded.loadAppSettings())
	require.Equal(t, path+":dev", reloaded.appSettings.SelectedKubeconfig)
}

func TestRestoreKubeconfigSelectionPrefersSavedEntry(t *testing.T) {
	kubeDir := setupKubeDir(t)
	app := newTestAppWithDefaults(t)
	path := filepath.Join(kubeDir, "config")
	writeTempKubeconfig(t, path, "prod", "dev")
	require.NoError(t, app.discoverKubeconfigs())

	app.appSettings = &AppSettings{SelectedKubeconfig: path + ":dev"}
	app.restoreKubeconfigSelection()
	require.Equal(t, path, app.selectedKubeconfig)
	require.Equal(t, "dev", app.selectedContext)
}

func TestRestoreKubeconfigSelectionFallsBackToCurrentContext(t *testing.T) {
	kubeDir := setupKubeDir(t)
	app := newTestAppWithDefaults(t)
	path := filepath.Join(kubeDir, "config")
	writeTempKubeconfig(t, path, "prod", "dev")
	require.NoError(t, app.discoverKubeconfigs())

	// Saved selection points at a context that no longer exists.
	app.appSettings = &AppSettings{SelectedKubeconfig: path + ":gone"}
	app.restoreKubeconfigSelection()
	require.Equal(t, path, app.selectedKubeconfig)
	require.Equal(t, "prod", app.selectedContext)
}
