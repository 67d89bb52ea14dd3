/*
 * backend/internal/config/config.go
 *
 * Timing and sizing knobs used across the backend.
 */

package config

import "time"

const (
	// LogTailPollInterval is the cadence of the background poll loop that
	// refreshes every open log tab while follow mode is active.
	LogTailPollInterval = 2 * time.Second

	// LogTailPollTailLines is the tail window requested by background polls.
	// Polls only need to catch the delta since the last fetch, so this stays
	// well below the initial window the user picks.
	LogTailPollTailLines = 200

	// LogTailDefaultTailLines is the initial tail window for a newly opened
	// tab when the user has not picked one of the discrete choices yet.
	LogTailDefaultTailLines = 100

	// LogTailRetentionCap bounds the number of buffered entries kept per tab.
	// Oldest entries are evicted first once the cap is exceeded.
	LogTailRetentionCap = 5000

	// LogTailFetchTimeout bounds a single tail fetch against the cluster.
	LogTailFetchTimeout = 30 * time.Second

	// LogTailScrollSettleDelay is the delay before the second scroll-to-bottom
	// request issued when follow mode is explicitly re-enabled. The first
	// request can race frontend layout; the second lands after it settles.
	LogTailScrollSettleDelay = 150 * time.Millisecond

	// LogTailRefetchParallelism limits concurrent tab re-fetches when the
	// kubeconfig changes and every open tab must be reseeded.
	LogTailRefetchParallelism = 4

	// KubeconfigWatcherDebounce coalesces bursts of filesystem events on
	// kubeconfig files before the client is rebuilt.
	KubeconfigWatcherDebounce = 500 * time.Millisecond

	// AppLogMaxEntries caps the in-memory application log.
	AppLogMaxEntries = 1000

	// LogPanelMinHeightPercent and LogPanelMaxHeightPercent clamp the log
	// viewer height as a percentage of the window.
	LogPanelMinHeightPercent = 15
	LogPanelMaxHeightPercent = 85

	// LogPanelDefaultHeightPercent is used when no height has been persisted.
	LogPanelDefaultHeightPercent = 30
)
