package backend

import "fmt"

// GetLogs returns the in-memory application log, oldest first.
func (a *App) GetLogs() []LogEntry {
	if a.logger == nil {
		return []LogEntry{}
	}
	return a.logger.GetEntries()
}

// ClearLogs empties the in-memory application log.
func (a *App) ClearLogs() error {
	if a.logger == nil {
		return fmt.Errorf("logger not initialized")
	}

	a.logger.Clear()
	a.logger.Info("Application logs cleared", "App")
	return nil
}
