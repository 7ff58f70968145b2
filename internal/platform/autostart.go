// Package platform wraps the OS-specific pieces the app needs: login-item
// registration and the single-instance lock.
package platform

import (
	"fmt"
	"os"
)

// Service exposes the per-OS operations. Each build target supplies the
// autostart implementation in its own file.
type Service interface {
	GetConfigDir() (string, error)
	EnableAutostart(appName, execPath string) error
	DisableAutostart(appName string) error
}

type osService struct{}

// NewService returns the Service for the current build target.
func NewService() Service {
	return osService{}
}

// GetConfigDir resolves the OS-standard configuration directory, falling
// back to a conventional path under the home directory when the standard
// lookup fails.
func (service osService) GetConfigDir() (string, error) {
	if configDir, err := os.UserConfigDir(); err == nil && configDir != "" {
		return configDir, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return fallbackConfigDir(homeDir), nil
}
