//go:build linux

package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDesktopEntry(t *testing.T) {
	entry := buildDesktopEntry(AutostartEntry{
		Name:     "Routine Timer",
		ExecPath: "/opt/routine timer/routinetimer",
		Args:     []string{"tray", "--store", "sqlite"},
		Comment:  "Morning routine",
	})

	assert.Equal(t, `[Desktop Entry]
Type=Application
Name=Routine Timer
Comment=Morning routine
Exec="/opt/routine timer/routinetimer" tray --store sqlite
X-GNOME-Autostart-enabled=true
Terminal=false
`, entry)
}

func TestAutostartRoundTrip(t *testing.T) {
	configDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configDir)

	service := NewService()
	require.NoError(t, service.EnableAutostart(AutostartEntry{Name: "routinetimer", ExecPath: "/usr/bin/routinetimer"}))

	desktopPath := filepath.Join(configDir, "autostart", "routinetimer.desktop")
	content, err := os.ReadFile(desktopPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Exec=/usr/bin/routinetimer\n")

	require.NoError(t, service.DisableAutostart("routinetimer"))
	_, err = os.Stat(desktopPath)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, service.DisableAutostart("routinetimer"))
}

func TestAutostartValidation(t *testing.T) {
	service := NewService()
	assert.Error(t, service.EnableAutostart(AutostartEntry{Name: "routinetimer"}))
	assert.Error(t, service.EnableAutostart(AutostartEntry{ExecPath: "/bin/true"}))
	assert.Error(t, service.DisableAutostart(" "))
}
