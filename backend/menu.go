package backend

import (
	"runtime"

	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/menu/keys"
	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// CreateMenu creates the application menu with OS-specific adjustments
func CreateMenu(app *App) *menu.Menu {
	appMenu := menu.NewMenu()

	createApplicationMenu(appMenu, app)
	createEditMenu(appMenu, app)
	createViewMenu(appMenu, app)
	createWindowMenu(appMenu, app)

	return appMenu
}

// createApplicationMenu creates the main application menu (or File menu on Windows/Linux)
func createApplicationMenu(appMenu *menu.Menu, app *App) {
	switch runtime.GOOS {
	case "darwin":
		fileMenu := appMenu.AddSubmenu("Kuboard")

		fileMenu.AddText("About Kuboard", nil, func(_ *menu.CallbackData) {
			go app.ShowAbout()
		})

		fileMenu.AddSeparator()

		fileMenu.AddText("Settings...", keys.CmdOrCtrl(","), func(_ *menu.CallbackData) {
			go app.ShowSettings()
		})

		fileMenu.AddText("Hide Kuboard", keys.CmdOrCtrl("h"), func(_ *menu.CallbackData) {
			go func() {
				if app.Ctx != nil {
					wailsRuntime.Hide(app.Ctx)
				}
			}()
		})

		fileMenu.AddText("Quit", keys.CmdOrCtrl("q"), func(_ *menu.CallbackData) {
			if app.Ctx != nil {
				wailsRuntime.Quit(app.Ctx)
			}
		})

	default: // windows, linux and other unix-like systems
		fileMenu := appMenu.AddSubmenu("File")

		fileMenu.AddText("Settings...", keys.CmdOrCtrl(","), func(_ *menu.CallbackData) {
			go app.ShowSettings()
		})

		fileMenu.AddSeparator()

		fileMenu.AddText("Quit", keys.CmdOrCtrl("q"), func(_ *menu.CallbackData) {
			if app.Ctx != nil {
				wailsRuntime.Quit(app.Ctx)
			}
		})

		helpMenu := appMenu.AddSubmenu("Help")

		helpMenu.AddText("About Kuboard", nil, func(_ *menu.CallbackData) {
			go app.ShowAbout()
		})
	}
}

// createEditMenu creates the Edit menu with standard editing commands
func createEditMenu(appMenu *menu.Menu, app *App) {
	editMenu := appMenu.AddSubmenu("Edit")

	// Both are handled by the frontend.
	editMenu.AddText("Copy", keys.CmdOrCtrl("c"), func(_ *menu.CallbackData) {
		if app.Ctx != nil {
			app.emitEvent("menu:copy")
		}
	})

	editMenu.AddText("Select All", keys.CmdOrCtrl("a"), func(_ *menu.CallbackData) {
		if app.Ctx != nil {
			app.emitEvent("menu:selectAll")
		}
	})
}

// createViewMenu creates the View menu with consistent items across platforms
func createViewMenu(appMenu *menu.Menu, app *App) {
	viewMenu := appMenu.AddSubmenu("View")

	viewMenu.AddText("Zoom In", keys.CmdOrCtrl("+"), func(_ *menu.CallbackData) {
		go app.emitEvent("zoom-in")
	})

	viewMenu.AddText("Zoom Out", keys.CmdOrCtrl("-"), func(_ *menu.CallbackData) {
		go app.emitEvent("zoom-out")
	})

	viewMenu.AddText("Reset Zoom", keys.CmdOrCtrl("0"), func(_ *menu.CallbackData) {
		go app.emitEvent("zoom-reset")
	})

	viewMenu.AddSeparator()

	sidebarText := "Hide Sidebar"
	if !app.IsSidebarVisible() {
		sidebarText = "Show Sidebar"
	}

	viewMenu.AddText(sidebarText, keys.Key("b"), func(_ *menu.CallbackData) {
		go func() {
			if err := app.ToggleSidebar(); err != nil {
				println("Failed to toggle sidebar:", err.Error())
			}
		}()
	})

	logsText := "Show Application Logs"
	if app.IsLogsPanelVisible() {
		logsText = "Hide Application Logs"
	}

	viewMenu.AddText(logsText, keys.Combo("l", keys.ShiftKey, keys.ControlKey), func(_ *menu.CallbackData) {
		go func() {
			if err := app.ToggleLogsPanel(); err != nil {
				println("Failed to toggle logs panel:", err.Error())
			}
		}()
	})

	viewMenu.AddText("Toggle Follow Logs", keys.Combo("f", keys.ShiftKey, keys.ControlKey), func(_ *menu.CallbackData) {
		go app.ToggleLogFollow()
	})

	// macOS will automatically add "Enter Full Screen" after this separator
	if runtime.GOOS == "darwin" {
		viewMenu.AddSeparator()
	}
}

// createWindowMenu creates the Window menu with OS-specific items
func createWindowMenu(appMenu *menu.Menu, app *App) {
	windowMenu := appMenu.AddSubmenu("Window")

	windowMenu.AddText("Minimize", keys.CmdOrCtrl("m"), func(_ *menu.CallbackData) {
		go func() {
			if app.Ctx != nil {
				wailsRuntime.WindowMinimise(app.Ctx)
			}
		}()
	})

	switch runtime.GOOS {
	case "darwin":
		windowMenu.AddText("Zoom", nil, func(_ *menu.CallbackData) {
			go func() {
				if app.Ctx != nil {
					wailsRuntime.WindowToggleMaximise(app.Ctx)
				}
			}()
		})

		windowMenu.AddSeparator()

		windowMenu.AddText("Bring All to Front", nil, func(_ *menu.CallbackData) {
			go func() {
				if app.Ctx != nil {
					wailsRuntime.WindowShow(app.Ctx)
					wailsRuntime.WindowSetAlwaysOnTop(app.Ctx, true)
					wailsRuntime.WindowSetAlwaysOnTop(app.Ctx, false)
				}
			}()
		})

		// Separator for macOS to insert "Enter Full Screen" and window list
		windowMenu.AddSeparator()

	default:
		windowMenu.AddText("Maximize", nil, func(_ *menu.CallbackData) {
			go func() {
				if app.Ctx != nil {
					wailsRuntime.WindowToggleMaximise(app.Ctx)
				}
			}()
		})

		windowMenu.AddSeparator()

		windowMenu.AddText("Close", keys.CmdOrCtrl("w"), func(_ *menu.CallbackData) {
			go func() {
				if app.Ctx != nil {
					wailsRuntime.WindowHide(app.Ctx)
				}
			}()
		})
	}
}
