//go:build mage
// +build mage

package main

import (
	"fmt"
	"os/exec"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

var Aliases = map[string]interface{}{
	"test": Test,
	"vet":  Vet,
}

func isWailsInstalled() error {
	if _, err := exec.LookPath("wails"); err != nil {
		return fmt.Errorf("wails CLI is not installed; run `go install github.com/wailsapp/wails/v2/cmd/wails@latest`")
	}
	return nil
}

// Dev runs the app in Wails development mode with hot reload.
func Dev() error {
	mg.Deps(isWailsInstalled)
	return sh.RunV("wails", "dev")
}

// Build produces a production binary for the current platform.
func Build() error {
	mg.Deps(isWailsInstalled)
	return sh.RunV("wails", "build", "-clean")
}

// Test runs the backend test suite.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet across the module.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}
