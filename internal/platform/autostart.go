package platform

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// DefaultAppName is used when an autostart entry has no name.
const DefaultAppName = "routinetimer"

// AutostartEntry describes the program launched at login.
type AutostartEntry struct {
	Name     string
	ExecPath string
	Args     []string
	Comment  string
}

func (entry AutostartEntry) validate(action string) error {
	if strings.TrimSpace(entry.Name) == "" {
		return fmt.Errorf("%s autostart: app name is empty", action)
	}
	if action == "enable" && entry.ExecPath == "" {
		return fmt.Errorf("%s autostart: exec path is empty", action)
	}
	return nil
}

// Service defines OS-specific helpers needed by the application.
type Service interface {
	ConfigDir() (string, error)
	EnableAutostart(entry AutostartEntry) error
	DisableAutostart(appName string) error
}

type platformService struct{}

// NewService returns a platform-specific implementation.
func NewService() Service {
	return &platformService{}
}

// ConfigDir returns the OS-standard configuration directory.
func (service *platformService) ConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err == nil && configDir != "" {
		return configDir, nil
	}

	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		return "", fmt.Errorf("get config dir: %w", errors.Join(err, homeErr))
	}

	return fallbackConfigDir(homeDir), nil
}

// slug turns an app name into a file or label friendly form.
func slug(appName string) string {
	name := strings.TrimSpace(appName)
	if name == "" {
		name = DefaultAppName
	}
	name = strings.ToLower(name)
	return strings.ReplaceAll(name, " ", "-")
}
