// Package settings persists the preview window's user preferences between
// runs. Storage goes through gdata so it lands in the platform's app data
// directory.
package settings

import (
	"fmt"

	"github.com/quasilyte/gdata/v2"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// AppName is the gdata application directory.
const AppName = "anty"

const (
	object   = "preview"
	property = "prefs"
)

// Prefs are the preferences the preview remembers.
type Prefs struct {
	// Size is the character size in pixels; zero means use the config.
	Size float64 `yaml:"size"`
	// SuperScale is the super mode scale; zero means off.
	SuperScale   float64 `yaml:"superScale"`
	DebugOverlay bool    `yaml:"debugOverlay"`
	StartAsleep  bool    `yaml:"startAsleep"`
}

// Defaults returns the preferences used before anything is saved.
func Defaults() Prefs {
	return Prefs{DebugOverlay: true}
}

// Store loads and saves Prefs. A Store without a gdata manager keeps
// preferences in memory only.
type Store struct {
	m     *gdata.Manager
	prefs Prefs
	log   zerolog.Logger
}

// Open opens the store under appName (AppName if empty) and loads saved
// preferences. A load failure is logged and leaves the defaults in place.
func Open(appName string, logger zerolog.Logger) (*Store, error) {
	if appName == "" {
		appName = AppName
	}
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("open settings storage: %w", err)
	}
	return New(m, logger), nil
}

// New wraps an existing manager; m may be nil.
func New(m *gdata.Manager, logger zerolog.Logger) *Store {
	s := &Store{m: m, prefs: Defaults(), log: logger}
	if err := s.Load(); err != nil {
		s.log.Warn().Err(err).Msg("settings not loaded, using defaults")
	}
	return s
}

// Load re-reads the saved preferences.
func (s *Store) Load() error {
	if s.m == nil || !s.m.ObjectPropExists(object, property) {
		s.prefs = Defaults()
		return nil
	}
	data, err := s.m.LoadObjectProp(object, property)
	if err != nil {
		s.prefs = Defaults()
		return fmt.Errorf("load settings: %w", err)
	}
	prefs := Defaults()
	if err := yaml.Unmarshal(data, &prefs); err != nil {
		s.prefs = Defaults()
		return fmt.Errorf("unmarshal settings: %w", err)
	}
	if prefs.Size < 0 {
		prefs.Size = 0
	}
	if prefs.SuperScale < 0 {
		prefs.SuperScale = 0
	}
	s.prefs = prefs
	s.log.Debug().Float64("size", prefs.Size).Float64("superScale", prefs.SuperScale).Msg("settings loaded")
	return nil
}

// Save writes the current preferences.
func (s *Store) Save() error {
	if s.m == nil {
		return nil
	}
	data, err := yaml.Marshal(s.prefs)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := s.m.SaveObjectProp(object, property, data); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Prefs returns a copy of the current preferences.
func (s *Store) Prefs() Prefs { return s.prefs }

// Update applies fn to the preferences and saves them.
func (s *Store) Update(fn func(*Prefs)) error {
	fn(&s.prefs)
	return s.Save()
}

// Persistent reports whether preferences survive a restart.
func (s *Store) Persistent() bool { return s.m != nil }
