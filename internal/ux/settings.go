package ux

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"shopchat/internal/logging"
)

// SettingsVersion is the current schema version for preferences.json.
const SettingsVersion = "1.0"

// ErrInvalidAppearance is returned for anything other than light or dark.
var ErrInvalidAppearance = errors.New("invalid appearance")

// Appearance selects the color theme.
type Appearance string

const (
	AppearanceLight Appearance = "light"
	AppearanceDark  Appearance = "dark"
)

// Valid reports whether a is a known appearance.
func (a Appearance) Valid() bool {
	return a == AppearanceLight || a == AppearanceDark
}

// Toggle returns the other appearance.
func (a Appearance) Toggle() Appearance {
	if a == AppearanceDark {
		return AppearanceLight
	}
	return AppearanceDark
}

// ParseAppearance accepts "light" or "dark" in any case.
func ParseAppearance(s string) (Appearance, error) {
	a := Appearance(strings.ToLower(strings.TrimSpace(s)))
	if !a.Valid() {
		return "", fmt.Errorf("%w: %q (valid: light, dark)", ErrInvalidAppearance, s)
	}
	return a, nil
}

// Settings is the user's display preferences.
type Settings struct {
	Version           string     `json:"version"`
	Appearance        Appearance `json:"appearance"`
	NotificationSound bool       `json:"notification_sound"`
}

// DefaultSettings returns light appearance with notification sound on.
func DefaultSettings() Settings {
	return Settings{
		Version:           SettingsVersion,
		Appearance:        AppearanceLight,
		NotificationSound: true,
	}
}

// Validate checks field values.
func (s Settings) Validate() error {
	if !s.Appearance.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAppearance, s.Appearance)
	}
	return nil
}

// SettingsManager handles loading/saving settings.
type SettingsManager struct {
	mu       sync.RWMutex
	path     string
	settings *Settings
}

// NewSettingsManager creates a settings manager for the given workspace.
func NewSettingsManager(workspace string) *SettingsManager {
	return &SettingsManager{
		path: filepath.Join(workspace, ".shopchat", "preferences.json"),
	}
}

// Path returns the preferences file location.
func (sm *SettingsManager) Path() string {
	return sm.path
}

// Load reads settings from disk. A missing file yields defaults; fields absent
// from an older file keep their default values.
func (sm *SettingsManager) Load() error {
	data, err := os.ReadFile(sm.path)
	if err != nil {
		if os.IsNotExist(err) {
			d := DefaultSettings()
			sm.mu.Lock()
			sm.settings = &d
			sm.mu.Unlock()
			return nil
		}
		return fmt.Errorf("failed to read preferences: %w", err)
	}

	s := DefaultSettings()
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to parse preferences: %w", err)
	}
	if err := s.Validate(); err != nil {
		logging.SettingsError("Preferences file has %v, using %s", err, AppearanceLight)
		s.Appearance = AppearanceLight
	}
	s.Version = SettingsVersion

	sm.mu.Lock()
	sm.settings = &s
	sm.mu.Unlock()

	logging.Settings("Loaded preferences: appearance=%s sound=%v", s.Appearance, s.NotificationSound)
	return nil
}

// Save writes settings to disk.
func (sm *SettingsManager) Save() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.saveLocked()
}

func (sm *SettingsManager) saveLocked() error {
	if sm.settings == nil {
		d := DefaultSettings()
		sm.settings = &d
	}

	dir := filepath.Dir(sm.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}

	data, err := json.MarshalIndent(sm.settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	if err := os.WriteFile(sm.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return nil
}

// Get returns a copy of the current settings (thread-safe).
func (sm *SettingsManager) Get() Settings {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if sm.settings == nil {
		return DefaultSettings()
	}
	return *sm.settings
}

// Update applies fn to a copy of the settings, validates, and persists the
// result. The in-memory settings are unchanged if validation or the write fails.
func (sm *SettingsManager) Update(fn func(*Settings)) (Settings, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	next := DefaultSettings()
	if sm.settings != nil {
		next = *sm.settings
	}
	fn(&next)

	if err := next.Validate(); err != nil {
		return sm.currentLocked(), err
	}

	prev := sm.settings
	sm.settings = &next
	if err := sm.saveLocked(); err != nil {
		sm.settings = prev
		logging.SettingsError("Failed to persist preferences: %v", err)
		return sm.currentLocked(), err
	}

	logging.Settings("Updated preferences: appearance=%s sound=%v", next.Appearance, next.NotificationSound)
	return next, nil
}

func (sm *SettingsManager) currentLocked() Settings {
	if sm.settings == nil {
		return DefaultSettings()
	}
	return *sm.settings
}

// Set updates a single setting by key, as used by `shopchat settings set`.
func (sm *SettingsManager) Set(key, value string) (Settings, error) {
	switch strings.ToLower(key) {
	case "appearance", "theme":
		a, err := ParseAppearance(value)
		if err != nil {
			return sm.Get(), err
		}
		return sm.Update(func(s *Settings) { s.Appearance = a })
	case "notification_sound", "sound":
		on, err := parseBool(value)
		if err != nil {
			return sm.Get(), err
		}
		return sm.Update(func(s *Settings) { s.NotificationSound = on })
	default:
		return sm.Get(), fmt.Errorf("unknown setting %q (valid: appearance, notification_sound)", key)
	}
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q (use on/off)", s)
}
