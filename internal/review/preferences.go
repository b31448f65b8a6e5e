package review

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

type GridSize string

const (
	GridSizeNormal      GridSize = "normal"
	GridSizeCompact     GridSize = "compact"
	GridSizeComfortable GridSize = "comfortable"
)

// Preferences is the process-wide reviewer configuration.
type Preferences struct {
	GridSize   GridSize `json:"gridSize" validate:"oneof=normal compact comfortable"`
	DarkMode   bool     `json:"darkMode"`
	BackendURL string   `json:"backendUrl" validate:"omitempty,url"`
}

func DefaultPreferences() Preferences {
	return Preferences{GridSize: GridSizeNormal}
}

// PreferenceKey names one preference of type T. The set of keys is closed:
// only the package-level keys below exist.
type PreferenceKey[T any] struct {
	name string
	get  func(Preferences) T
	set  func(*Preferences, T)
}

func (k PreferenceKey[T]) Name() string {
	return k.name
}

var (
	GridSizeKey = PreferenceKey[GridSize]{
		name: "gridSize",
		get:  func(p Preferences) GridSize { return p.GridSize },
		set:  func(p *Preferences, v GridSize) { p.GridSize = v },
	}
	DarkModeKey = PreferenceKey[bool]{
		name: "darkMode",
		get:  func(p Preferences) bool { return p.DarkMode },
		set:  func(p *Preferences, v bool) { p.DarkMode = v },
	}
	BackendURLKey = PreferenceKey[string]{
		name: "backendUrl",
		get:  func(p Preferences) string { return p.BackendURL },
		set:  func(p *Preferences, v string) { p.BackendURL = v },
	}
)

// PreferenceNames lists the names accepted by SetPreferenceByName.
var PreferenceNames = []string{GridSizeKey.name, DarkModeKey.name, BackendURLKey.name}

var ErrUnknownPreference = errors.New("unknown preference")

// SetPreference updates exactly one preference and persists the result.
func SetPreference[T any](ctx context.Context, s *Store, key PreferenceKey[T], value T) error {
	return s.updatePreferences(ctx, func(p *Preferences) {
		key.set(p, value)
	})
}

// GetPreference returns the current value of one preference.
func GetPreference[T any](s *Store, key PreferenceKey[T]) T {
	return key.get(s.Preferences())
}

// SetPreferenceByName parses value for the named preference and sets it.
// It serves text boundaries such as flags and query parameters.
func (s *Store) SetPreferenceByName(ctx context.Context, name, value string) error {
	switch name {
	case GridSizeKey.name:
		return SetPreference(ctx, s, GridSizeKey, GridSize(value))
	case DarkModeKey.name:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return &ValidationError{Violations: []FieldViolation{{
				Field:       DarkModeKey.name,
				Description: fmt.Sprintf("darkMode must be a boolean, got %q", value),
			}}}
		}
		return SetPreference(ctx, s, DarkModeKey, b)
	case BackendURLKey.name:
		return SetPreference(ctx, s, BackendURLKey, value)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownPreference, name)
	}
}
