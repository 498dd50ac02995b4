// Package config provides rule preset management for Math Quest.
//
// The config package handles:
//   - Loading rule presets from JSON files
//   - Preset validation
//   - Default preset management
//   - Preset discovery and listing
//
// Preset Format:
//
// Rule presets are stored as JSON files in the configs directory. Each preset
// defines:
//   - Scoring rules (whether wrong answers deduct points)
//   - Timer settings (enabled flag and per-problem duration)
//   - Round count for a full game
//   - Presentation flags (auto-closing result modals, showing problems on tiles)
//
// Available Presets:
//
//   - classic: standard 10-round game with negative points and no timer
//   - practice: relaxed rules for younger players, no point deduction
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load specific preset
//	preset, err := manager.LoadPreset("practice")
//
//	// Get default preset
//	defaultPreset := manager.GetDefault()
//
//	// List available presets
//	presets, err := manager.ListPresets()
//
// Validation:
//
// All presets are validated for:
//   - A non-empty name
//   - The supported board size
//   - A positive round count
//   - A usable timer duration when the timer is enabled
package config
