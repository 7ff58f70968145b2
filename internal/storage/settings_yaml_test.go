package storage

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkalasas/pomotoro-app-sub000/internal/ui/preferences"
)

const testAppName = "pomotoro-test"

// useTempConfigDir points os.UserConfigDir at a scratch directory.
func useTempConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	switch runtime.GOOS {
	case "windows":
		t.Setenv("AppData", dir)
	case "darwin":
		t.Setenv("HOME", dir)
	default:
		t.Setenv("XDG_CONFIG_HOME", dir)
	}
	return dir
}

func TestLoadSettingsMissingFileReturnsDefaults(t *testing.T) {
	useTempConfigDir(t)

	settings, err := LoadSettings(testAppName)
	require.NoError(t, err)
	assert.Equal(t, preferences.DefaultSettings(), settings)
}

func TestSettingsRoundTrip(t *testing.T) {
	useTempConfigDir(t)

	saved := preferences.Settings{
		ServerURL:      "https://pomodoro.example.com",
		AuthToken:      "tok-123",
		OverlayOpacity: 0.9,
		Fullscreen:     false,
		Autostart:      true,
	}
	require.NoError(t, SaveSettings(testAppName, saved))

	loaded, err := LoadSettings(testAppName)
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestLoadSettingsRejectsOutOfRangeOpacity(t *testing.T) {
	useTempConfigDir(t)

	saved := preferences.DefaultSettings()
	saved.OverlayOpacity = 0.9
	require.NoError(t, SaveSettings(testAppName, saved))

	configPath, err := resolveConfigPath(testAppName, settingsFileName)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(configPath, []byte("overlay_opacity: 0.2\nserver_url: http://host\n"), 0o644))

	loaded, err := LoadSettings(testAppName)
	require.NoError(t, err)
	assert.Equal(t, preferences.DefaultSettings().OverlayOpacity, loaded.OverlayOpacity)
	assert.Equal(t, "http://host", loaded.ServerURL)
}

func TestLoadSettingsEmptyServerURLKeepsDefault(t *testing.T) {
	useTempConfigDir(t)

	configPath, err := resolveConfigPath(testAppName, settingsFileName)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(configPath), 0o755))
	require.NoError(t, os.WriteFile(configPath, []byte("auth_token: abc\n"), 0o644))

	loaded, err := LoadSettings(testAppName)
	require.NoError(t, err)
	assert.Equal(t, preferences.DefaultSettings().ServerURL, loaded.ServerURL)
	assert.Equal(t, "abc", loaded.AuthToken)
}

func TestLoadSettingsMalformedYaml(t *testing.T) {
	useTempConfigDir(t)

	configPath, err := resolveConfigPath(testAppName, settingsFileName)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(configPath), 0o755))
	require.NoError(t, os.WriteFile(configPath, []byte(":\n\t- broken"), 0o644))

	_, err = LoadSettings(testAppName)
	assert.Error(t, err)
}
