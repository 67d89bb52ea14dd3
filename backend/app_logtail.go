package backend

import (
	"fmt"

	"github.com/kuboard/app/backend/logtail"
)

// allowedTailLines are the discrete tail window sizes the UI offers.
var allowedTailLines = map[int]bool{50: true, 100: true, 500: true, 1000: true}

// OpenLogTab opens (or re-activates) a log tab for the pod/container and
// returns its key. Container may be empty to tail the pod's default container.
func (a *App) OpenLogTab(namespace, pod, container string) (string, error) {
	if namespace == "" || pod == "" {
		return "", fmt.Errorf("namespace and pod are required")
	}

	key, created := a.logTabs.OpenTab(namespace, pod, container)
	if created {
		a.logger.Info(fmt.Sprintf("Opened log tab %s", key), "LogTail")
	} else {
		a.logger.Debug(fmt.Sprintf("Re-activated log tab %s", key), "LogTail")
	}
	return key.String(), nil
}

// CloseLogTab closes the tab and discards its buffer. Closing the last tab
// stops the poll loop.
func (a *App) CloseLogTab(key string) error {
	parsed, err := logtail.ParseKey(key)
	if err != nil {
		return err
	}
	if err := a.logTabs.CloseTab(parsed); err != nil {
		return err
	}
	a.logger.Info(fmt.Sprintf("Closed log tab %s", parsed), "LogTail")

	if len(a.logTabs.Tabs()) == 0 {
		a.logTabs.StopLoop()
		a.logSearch.Clear()
	}
	return nil
}

// SetActiveLogTab selects the tab without triggering a fetch.
func (a *App) SetActiveLogTab(key string) error {
	parsed, err := logtail.ParseKey(key)
	if err != nil {
		return err
	}
	return a.logTabs.SetActiveTab(parsed)
}

// GetLogTabs lists the open log tabs in creation order.
func (a *App) GetLogTabs() []logtail.TabInfo {
	return a.logTabs.Tabs()
}

// GetLogTabEntries returns the buffered entries of the tab.
func (a *App) GetLogTabEntries(key string) ([]logtail.Entry, error) {
	parsed, err := logtail.ParseKey(key)
	if err != nil {
		return nil, err
	}
	return a.logTabs.Entries(parsed)
}

// RefreshLogTab forces an immediate fetch for the tab.
func (a *App) RefreshLogTab(key string) error {
	parsed, err := logtail.ParseKey(key)
	if err != nil {
		return err
	}
	return a.logTabs.Refresh(parsed)
}

// SetLogTailLines changes the tab's tail window to one of the discrete UI
// choices and triggers an immediate re-fetch. The choice is also persisted
// as the preference for new tabs.
func (a *App) SetLogTailLines(key string, lines int) error {
	if !allowedTailLines[lines] {
		return fmt.Errorf("unsupported tail lines value: %d", lines)
	}
	parsed, err := logtail.ParseKey(key)
	if err != nil {
		return err
	}
	if err := a.logTabs.SetTailLines(parsed, lines); err != nil {
		return err
	}
	a.logTabs.SetDefaultTailLines(lines)

	if a.appSettings != nil && a.appSettings.LogTailLines != lines {
		a.appSettings.LogTailLines = lines
		if err := a.saveAppSettings(); err != nil {
			a.logger.Warn(fmt.Sprintf("Failed to save tail lines preference: %v", err), "LogTail")
		}
	}
	return nil
}

// ReportLogScroll feeds a scroll observation from the frontend into the
// follow machine: atBottom means the view is within the bottom threshold.
func (a *App) ReportLogScroll(atBottom bool) {
	a.logFollow.OnScroll(atBottom)
}

// ToggleLogFollow flips between FOLLOWING and PAUSED from an explicit user
// action and returns the new state.
func (a *App) ToggleLogFollow() string {
	state := a.logFollow.Toggle()
	a.logger.Debug(fmt.Sprintf("Log follow toggled to %s", state), "LogTail")
	return state.String()
}

// GetLogFollowState returns the current follow state name.
func (a *App) GetLogFollowState() string {
	return a.logFollow.State().String()
}

// ToggleLogEntryExpanded sets the truncation state of one buffered entry.
func (a *App) ToggleLogEntryExpanded(key string, id int64, expanded bool) error {
	parsed, err := logtail.ParseKey(key)
	if err != nil {
		return err
	}
	return a.logTabs.SetExpanded(parsed, id, expanded)
}

// SearchLogs runs a substring search over the tab's current buffer and
// returns the filtered projection. An empty query restores the full view.
func (a *App) SearchLogs(key, query string, caseSensitive bool) (logtail.SearchResult, error) {
	parsed, err := logtail.ParseKey(key)
	if err != nil {
		return logtail.SearchResult{}, err
	}
	entries, err := a.logTabs.Entries(parsed)
	if err != nil {
		return logtail.SearchResult{}, err
	}
	return a.logSearch.Run(entries, query, caseSensitive), nil
}

// NavigateLogSearch moves the current-match pointer forward (direction > 0)
// or backward (direction < 0), wrapping at both ends.
func (a *App) NavigateLogSearch(direction int) logtail.SearchResult {
	return a.logSearch.Navigate(direction)
}

// ClearLogSearch resets the search overlay to the unfiltered view.
func (a *App) ClearLogSearch() {
	a.logSearch.Clear()
}
