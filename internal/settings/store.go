// Package settings persists user-tunable configuration: the alias table,
// user-defined launch commands, and feature flags. The store seeds built-in
// defaults on first run without overwriting anything the user already set.
package settings

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"

	"github.com/voxlaunch/voxlaunch/internal/logging"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Settings is the persisted document.
type Settings struct {
	// Aliases maps a canonical application name to its spoken aliases,
	// strongest first.
	Aliases map[string][]string `json:"aliases"`
	// UserCommands maps a trigger phrase to an explicit launch target that
	// bypasses inventory lookup.
	UserCommands map[string]string `json:"user_commands"`
	// DisableWindowManager skips the switch-confirmation stage entirely.
	DisableWindowManager bool `json:"disable_window_manager"`
}

// Store is a file-backed settings store, safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	path     string
	data     Settings
	logger   *logging.Logger
	watchers []func()
}

// NewStore creates a store backed by the JSON file at path. The file is not
// touched until Initialize is called.
func NewStore(path string, logger *logging.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger,
		data: Settings{
			Aliases:      make(map[string][]string),
			UserCommands: make(map[string]string),
		},
	}
}

// DefaultPath returns the per-user settings file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "voxlaunch", "settings.json")
}

// Initialize loads the settings file if present and seeds defaults for any
// missing keys. Pre-existing values always survive; seeding is strictly
// additive. Safe to call more than once.
func (s *Store) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return err
	}

	defaults, err := builtinAliases()
	if err != nil {
		return err
	}

	changed := false
	if s.data.Aliases == nil {
		s.data.Aliases = make(map[string][]string)
	}
	if len(s.data.Aliases) == 0 {
		for name, aliases := range defaults {
			s.data.Aliases[name] = append([]string(nil), aliases...)
		}
		changed = true
	}
	if s.data.UserCommands == nil {
		s.data.UserCommands = make(map[string]string)
		changed = true
	}

	if changed {
		if err := s.saveLocked(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) loadLocked() error {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}

	var loaded Settings
	if err := sonic.Unmarshal(raw, &loaded); err != nil {
		return fmt.Errorf("failed to parse settings: %w", err)
	}
	s.data = loaded
	return nil
}

func (s *Store) saveLocked() error {
	raw, err := sonic.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create settings dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// Aliases returns a copy of the alias table.
func (s *Store) Aliases() map[string][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]string, len(s.data.Aliases))
	for name, aliases := range s.data.Aliases {
		out[name] = append([]string(nil), aliases...)
	}
	return out
}

// UserCommands returns a copy of the user command table.
func (s *Store) UserCommands() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.data.UserCommands))
	for trigger, target := range s.data.UserCommands {
		out[trigger] = target
	}
	return out
}

// DisableWindowManager reports whether switch confirmation is turned off.
func (s *Store) DisableWindowManager() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.DisableWindowManager
}

// SetAlias replaces the alias list for one canonical name and persists.
func (s *Store) SetAlias(name string, aliases []string) error {
	s.mu.Lock()
	s.data.Aliases[name] = append([]string(nil), aliases...)
	err := s.saveLocked()
	s.mu.Unlock()

	s.notify()
	return err
}

// SetUserCommand adds or replaces a user-defined launch command and persists.
func (s *Store) SetUserCommand(trigger, target string) error {
	s.mu.Lock()
	s.data.UserCommands[trigger] = target
	err := s.saveLocked()
	s.mu.Unlock()

	s.notify()
	return err
}

// SetDisableWindowManager toggles the switch-confirmation flag and persists.
func (s *Store) SetDisableWindowManager(disabled bool) error {
	s.mu.Lock()
	s.data.DisableWindowManager = disabled
	err := s.saveLocked()
	s.mu.Unlock()

	s.notify()
	return err
}

// OnChange registers a callback fired after every successful mutation.
// Callers use this to invalidate derived caches.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}

func (s *Store) notify() {
	s.mu.RLock()
	watchers := append([]func(){}, s.watchers...)
	s.mu.RUnlock()

	for _, fn := range watchers {
		fn()
	}
}

func builtinAliases() (map[string][]string, error) {
	var doc struct {
		Aliases map[string][]string `yaml:"aliases"`
	}
	if err := yaml.Unmarshal(defaultsYAML, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse builtin aliases: %w", err)
	}
	return doc.Aliases, nil
}
