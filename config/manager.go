package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
)

// Manager loads and saves Settings from a JSON file.
type Manager struct {
	mu   sync.RWMutex
	fs   afero.Fs
	path string
}

// NewManager creates a manager backed by the OS filesystem.
func NewManager(path string) *Manager {
	return NewManagerWithFs(afero.NewOsFs(), path)
}

// NewManagerWithFs creates a manager on the given filesystem.
func NewManagerWithFs(fs afero.Fs, path string) *Manager {
	return &Manager{fs: fs, path: path}
}

// Path returns the settings file location.
func (m *Manager) Path() string {
	return m.path
}

// Load reads the settings file, falling back to DefaultSettings when it does
// not exist, then applies environment overrides and validation.
func (m *Manager) Load() (Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	settings := DefaultSettings()
	data, err := afero.ReadFile(m.fs, m.path)
	switch {
	case err == nil:
		if len(strings.TrimSpace(string(data))) > 0 {
			if err := json.Unmarshal(data, &settings); err != nil {
				return Settings{}, fmt.Errorf("decode settings %s: %w", m.path, err)
			}
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Settings{}, fmt.Errorf("read settings %s: %w", m.path, err)
	}

	applyEnvOverrides(&settings)
	settings.Validate()
	return settings, nil
}

// EnsureDefaults writes DefaultSettings to the settings path when no file
// exists there yet, so a first run leaves an editable template behind.
// Environment overrides are not persisted. It reports whether a file was
// created.
func (m *Manager) EnsureDefaults() (bool, error) {
	_, err := m.fs.Stat(m.path)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, os.ErrNotExist):
		return false, fmt.Errorf("stat settings %s: %w", m.path, err)
	}
	if err := m.Save(DefaultSettings()); err != nil {
		return false, err
	}
	return true, nil
}

// Save writes settings atomically.
func (m *Manager) Save(settings Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fs.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	tmp := m.path + ".tmp"
	if err := afero.WriteFile(m.fs, tmp, data, 0o600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := m.fs.Rename(tmp, m.path); err != nil {
		_ = m.fs.Remove(tmp)
		return fmt.Errorf("rename settings: %w", err)
	}
	return nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are ignored; variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// SettingsPath resolves the settings file from MARQUEE_SETTINGS or the default.
func SettingsPath() string {
	if p := strings.TrimSpace(os.Getenv("MARQUEE_SETTINGS")); p != "" {
		return p
	}
	return filepath.Join("data", "settings.json")
}

func applyEnvOverrides(s *Settings) {
	if v := strings.TrimSpace(os.Getenv("TMDB_API_KEY")); v != "" {
		s.TMDB.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("TMDB_LANGUAGE")); v != "" {
		s.TMDB.Language = v
	}
	if v := strings.TrimSpace(os.Getenv("MARQUEE_HOST")); v != "" {
		s.Server.Host = v
	}
	if v := strings.TrimSpace(os.Getenv("MARQUEE_PORT")); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			s.Server.Port = port
		}
	}
	if v := strings.TrimSpace(os.Getenv("MARQUEE_LOG_FILE")); v != "" {
		s.Logging.File = v
	}
	if v := strings.TrimSpace(os.Getenv("MARQUEE_ADMIN_TOKEN")); v != "" {
		s.Server.AdminToken = v
	}
}
