package backend

// KubeconfigInfo describes one context found in a kubeconfig file.
type KubeconfigInfo struct {
	Name             string `json:"name"`             // Display name (filename)
	Path             string `json:"path"`             // Path to the kubeconfig file
	Context          string `json:"context"`          // Context name within the file
	IsDefault        bool   `json:"isDefault"`        // Whether this is from the default config file
	IsCurrentContext bool   `json:"isCurrentContext"` // Whether this is the current context in the file
}

// WindowSettings represents the window position and size
type WindowSettings struct {
	X         int  `json:"x"`
	Y         int  `json:"y"`
	Width     int  `json:"width"`
	Height    int  `json:"height"`
	Maximized bool `json:"maximized"`
}

// AppSettings represents the application settings
type AppSettings struct {
	Theme                 string `json:"theme"`                 // "light", "dark", or "system"
	SelectedKubeconfig    string `json:"selectedKubeconfig"`    // Selection in "path:context" form
	LogTailLines          int    `json:"logTailLines"`          // Preferred tail window for new log tabs
	LogPanelHeightPercent int    `json:"logPanelHeightPercent"` // Log panel height as a clamped percentage
}

// ThemeInfo represents theme information to send to frontend
type ThemeInfo struct {
	CurrentTheme string `json:"currentTheme"` // "light" or "dark"
	UserTheme    string `json:"userTheme"`    // "light", "dark", or "system"
}
