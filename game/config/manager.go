package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mathquest/mathquest/game/engine"
	"github.com/mathquest/mathquest/game/service"
)

var (
	ErrPresetNotFound = errors.New("preset not found")
	ErrInvalidPreset  = errors.New("invalid preset")
)

// ValidatePreset checks a rule preset for values the board and turn logic can
// actually run with. The ring layout hard-codes its special positions, so the
// board size is pinned to the default.
func ValidatePreset(p *engine.Options) error {
	if p.Name == "" {
		return errors.New("preset name is required")
	}
	if p.BoardSize != engine.DefaultBoardSize {
		return fmt.Errorf("board_size must be %d, got %d", engine.DefaultBoardSize, p.BoardSize)
	}
	if p.MaxRounds < 1 {
		return fmt.Errorf("max_rounds must be at least 1, got %d", p.MaxRounds)
	}
	if p.TimerEnabled && p.TimerDuration < 5 {
		return fmt.Errorf("timer_duration must be at least 5 when the timer is enabled, got %d", p.TimerDuration)
	}
	return nil
}

// Manager handles rule preset loading and caching
type Manager struct {
	presetDir     string
	defaultPreset *engine.Options
	presets       map[string]*engine.Options
	mu            sync.RWMutex
}

// NewManager creates a new preset manager
func NewManager(presetDir string) (*Manager, error) {
	if _, err := os.Stat(presetDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("preset directory does not exist: %s", presetDir)
	}

	m := &Manager{
		presetDir: presetDir,
		presets:   make(map[string]*engine.Options),
	}

	if err := m.loadDefaultPreset(); err != nil {
		return nil, fmt.Errorf("failed to load default preset: %w", err)
	}

	return m, nil
}

// LoadPreset loads a preset by name
func (m *Manager) LoadPreset(name string) (*engine.Options, error) {
	m.mu.RLock()
	// Check cache first
	if preset, exists := m.presets[name]; exists {
		m.mu.RUnlock()
		return preset, nil
	}
	m.mu.RUnlock()

	// Load from file
	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if preset, exists := m.presets[name]; exists {
		return preset, nil
	}

	// Add .json extension if not present
	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	presetPath := filepath.Join(m.presetDir, filename)

	data, err := os.ReadFile(presetPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrPresetNotFound
		}
		return nil, fmt.Errorf("failed to read preset file: %w", err)
	}

	var preset engine.Options
	if err := json.Unmarshal(data, &preset); err != nil {
		return nil, fmt.Errorf("failed to parse preset: %w", err)
	}

	if err := ValidatePreset(&preset); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPreset, err)
	}

	// Cache the preset
	m.presets[name] = &preset
	return &preset, nil
}

// ListPresets returns information about all available presets
func (m *Manager) ListPresets() ([]*service.PresetInfo, error) {
	entries, err := os.ReadDir(m.presetDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset directory: %w", err)
	}

	var presets []*service.PresetInfo

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		// Remove .json extension for preset name
		name := strings.TrimSuffix(entry.Name(), ".json")

		preset, err := m.LoadPreset(name)
		if err != nil {
			// Skip invalid presets
			continue
		}

		presets = append(presets, &service.PresetInfo{
			Filename:    entry.Name(),
			PresetID:    name, // This is the identifier to use for session creation
			Name:        preset.Name,
			Description: preset.Description,
			BoardSize:   preset.BoardSize,
			MaxRounds:   preset.MaxRounds,
		})
	}

	return presets, nil
}

// GetDefault returns the default preset
func (m *Manager) GetDefault() *engine.Options {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultPreset
}

// SetDefault sets the default preset by name
func (m *Manager) SetDefault(name string) error {
	preset, err := m.LoadPreset(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultPreset = preset
	return nil
}

// RefreshCache reloads all cached presets from disk
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.presets = make(map[string]*engine.Options)

	return m.loadDefaultPreset()
}

// loadDefaultPreset loads the default preset
func (m *Manager) loadDefaultPreset() error {
	// Try classic.json first
	preset, err := m.LoadPreset("classic")
	if err != nil {
		// Fall back to the first available preset
		presets, listErr := m.ListPresets()
		if listErr != nil || len(presets) == 0 {
			m.defaultPreset = m.builtinPreset()
			return nil
		}

		preset, err = m.LoadPreset(strings.TrimSuffix(presets[0].Filename, ".json"))
		if err != nil {
			m.defaultPreset = m.builtinPreset()
			return nil
		}
	}

	m.defaultPreset = preset
	return nil
}

// SavePreset saves a preset to disk
func (m *Manager) SavePreset(name string, preset *engine.Options) error {
	if err := ValidatePreset(preset); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPreset, err)
	}

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	presetPath := filepath.Join(m.presetDir, filename)

	data, err := json.MarshalIndent(preset, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preset: %w", err)
	}

	if err := os.WriteFile(presetPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write preset file: %w", err)
	}

	// Update cache
	m.mu.Lock()
	m.presets[name] = preset
	m.mu.Unlock()

	return nil
}

// builtinPreset mirrors the engine defaults for when no preset files exist.
func (m *Manager) builtinPreset() *engine.Options {
	opts := engine.DefaultOptions()
	opts.Name = "default"
	opts.Description = "Built-in default rules"
	return &opts
}
