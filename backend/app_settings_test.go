package backend

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kuboard/app/backend/internal/config"
	"github.com/stretchr/testify/require"
)

func newTestAppWithDefaults(t *testing.T) *App {
	t.Helper()
	app := &App{
		logger:         NewLogger(100),
		eventEmitter:   func(context.Context, string, ...interface{}) {},
		sidebarVisible: true,
	}
	app.initLogTail()
	t.Cleanup(app.logTabs.Close)
	return app
}

func setTestConfigEnv(t *testing.T) {
	t.Helper()
	baseDir := t.TempDir()
	t.Setenv("HOME", baseDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(baseDir, ".config"))
	t.Setenv("APPDATA", filepath.Join(baseDir, "AppData", "Roaming"))
}

func TestAppLoadWindowSettingsDefaultWhenMissing(t *testing.T) {
	setTestConfigEnv(t)
	app := newTestAppWithDefaults(t)

	settings, err := app.LoadWindowSettings()
	require.NoError(t, err)
	require.NotNil(t, settings)
	require.Equal(t, 1200, settings.Width)
	require.Equal(t, 800, settings.Height)
}

func TestAppLoadWindowSettingsReadsExistingFile(t *testing.T) {
	setTestConfigEnv(t)
	app := newTestAppWithDefaults(t)

	configPath, err := app.getSettingsFilePath()
	require.NoError(t, err)

	want := &WindowSettings{X: 10, Y: 20, Width: 900, Height: 600, Maximized: true}
	settings := &settingsFile{
		SchemaVersion: settingsSchemaVersion,
		UpdatedAt:     time.Now().UTC(),
		Preferences:   settingsPreferences{Theme: "system", LogTailLines: 100},
		UI:            settingsUI{Window: *want, LogPanelHeightPercent: 30},
	}
	bytes, err := json.Marshal(settings)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(configPath, bytes, 0o644))

	got, err := app.LoadWindowSettings()
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Equal(t, want, app.windowSettings)
}

func TestAppGetAppSettingsReturnsDefaultWhenMissing(t *testing.T) {
	setTestConfigEnv(t)
	app := newTestAppWithDefaults(t)

	settings, err := app.GetAppSettings()
	require.NoError(t, err)
	require.Equal(t, "system", settings.Theme)
	require.Equal(t, config.LogTailDefaultTailLines, settings.LogTailLines)
	require.Equal(t, config.LogPanelDefaultHeightPercent, settings.LogPanelHeightPercent)
}

func TestAppSaveAndLoadAppSettingsRoundTrip(t *testing.T) {
	setTestConfigEnv(t)
	app := newTestAppWithDefaults(t)

	app.appSettings = &AppSettings{
		Theme:                 "dark",
		SelectedKubeconfig:    "/home/user/.kube/config:prod",
		LogTailLines:          500,
		LogPanelHeightPercent: 40,
	}
	require.NoError(t, app.saveAppSettings())

	reloaded := newTestAppWithDefaults(t)
	require.NoError(t, reloaded.loadAppSettings())
	require.Equal(t, app.appSettings, reloaded.appSettings)
}

func TestAppSetThemePersistsAndLogs(t *testing.T) {
	setTestConfigEnv(t)
	app := newTestAppWithDefaults(t)

	require.NoError(t, app.SetTheme("dark"))
	require.Equal(t, "dark", app.appSettings.Theme)

	reloaded := newTestAppWithDefaults(t)
	require.NoError(t, reloaded.loadAppSettings())
	require.Equal(t, "dark", reloaded.appSettings.Theme)
}

func TestAppSetThemeRejectsInvalidValues(t *testing.T) {
	setTestConfigEnv(t)
	app := newTestAppWithDefaults(t)

	require.Error(t, app.SetTheme("midnight"))
}

func TestAppGetThemeInfoReflectsCurrentSettings(t *testing.T) {
	setTestConfigEnv(t)
	app := newTestAppWithDefaults(t)
	app.appSettings = &AppSettings{Theme: "light"}

	info, err := app.GetThemeInfo()
	require.NoError(t, err)
	require.Equal(t, "light", info.CurrentTheme)
	require.Equal(t, "light", info.UserTheme)
}

func TestClampLogPanelHeight(t *testing.T) {
	require.Equal(t, config.LogPanelDefaultHeightPercent, clampLogPanelHeight(0))
	require.Equal(t, config.LogPanelMinHeightPercent, clampLogPanelHeight(5))
	require.Equal(t, config.LogPanelMaxHeightPercent, clampLogPanelHeight(99))
	require.Equal(t, 42, clampLogPanelHeight(42))
}

func TestAppSetLogPanelHeightClampsAndPersists(t *testing.T) {
	setTestConfigEnv(t)
	app := newTestAppWithDefaults(t)

	got, err := app.SetLogPanelHeight(95)
	require.NoError(t, err)
	require.Equal(t, config.LogPanelMaxHeightPercent, got)

	reloaded := newTestAppWithDefaults(t)
	height, err := reloaded.GetLogPanelHeight()
	require.NoError(t, err)
	require.Equal(t, config.LogPanelMaxHeightPercent, height)
}

func TestLoadSettingsFileNormalizesDefaults(t *testing.T) {
	setTestConfigEnv(t)
	app := newTestAppWithDefaults(t)

	configPath, err := app.getSettingsFilePath()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(configPath, []byte(`{"ui":{"logPanelHeightPercent":200}}`), 0o644))

	settings, err := app.loadSettingsFile()
	require.NoError(t, err)
	require.Equal(t, settingsSchemaVersion, settings.SchemaVersion)
	require.Equal(t, "system", settings.Preferences.Theme)
	require.Equal(t, config.LogTailDefaultTailLines, settings.Preferences.LogTailLines)
	require.Equal(t, config.LogPanelMaxHeightPercent, settings.UI.LogPanelHeightPercent)
}

func TestClearAppStateRemovesSettingsFile(t *testing.T) {
	setTestConfigEnv(t)
	app := newTestAppWithDefaults(t)

	require.NoError(t, app.SetTheme("dark"))
	configPath, err := app.getSettingsFilePath()
	require.NoError(t, err)
	require.FileExists(t, configPath)

	require.NoError(t, app.ClearAppState())
	require.NoFileExists(t, configPath)
	require.Nil(t, app.appSettings)

	// Re-running against a clean slate must not fail.
	require.NoError(t, app.ClearAppState())
}

func TestAppShowSettingsWarnsWhenContextNil(t *testing.T) {
	app := newTestAppWithDefaults(t)

	app.ShowSettings()

	entries := app.logger.GetEntries()
	require.NotEmpty(t, entries)
	require.Equal(t, "WARN", entries[len(entries)-1].Level)
}
