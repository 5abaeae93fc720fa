// Package config provides configuration management for Anty
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all application configuration
type Config struct {
	Character  CharacterConfig  `mapstructure:"character" yaml:"character"`
	Idle       IdleConfig       `mapstructure:"idle" yaml:"idle"`
	Glow       GlowConfig       `mapstructure:"glow" yaml:"glow"`
	Shadow     ShadowConfig     `mapstructure:"shadow" yaml:"shadow"`
	Controller ControllerConfig `mapstructure:"controller" yaml:"controller"`
	Debug      DebugConfig      `mapstructure:"debug" yaml:"debug"`
	Window     WindowConfig     `mapstructure:"window" yaml:"window"`
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
}

// CharacterConfig sizes the character
type CharacterConfig struct {
	Size          float64 `mapstructure:"size" yaml:"size"` // pixels
	BaseScale     float64 `mapstructure:"base_scale" yaml:"base_scale"`
	ReferenceSize float64 `mapstructure:"reference_size" yaml:"reference_size"`
	StartAsleep   bool    `mapstructure:"start_asleep" yaml:"start_asleep"`
}

// IdleConfig tunes the float loop and blinks. Durations are seconds.
type IdleConfig struct {
	Amplitude         float64 `mapstructure:"amplitude" yaml:"amplitude"` // reference pixels
	Rotation          float64 `mapstructure:"rotation" yaml:"rotation"`   // degrees
	Breathe           float64 `mapstructure:"breathe" yaml:"breathe"`
	Duration          float64 `mapstructure:"duration" yaml:"duration"`
	BlinkMinInterval  float64 `mapstructure:"blink_min_interval" yaml:"blink_min_interval"`
	BlinkMaxInterval  float64 `mapstructure:"blink_max_interval" yaml:"blink_max_interval"`
	DoubleBlinkChance float64 `mapstructure:"double_blink_chance" yaml:"double_blink_chance"`
}

// GlowConfig tunes the glow springs
type GlowConfig struct {
	Stiffness  float64 `mapstructure:"stiffness" yaml:"stiffness"`
	Damping    float64 `mapstructure:"damping" yaml:"damping"`
	Amplitude  float64 `mapstructure:"amplitude" yaml:"amplitude"`
	Frequency  float64 `mapstructure:"frequency" yaml:"frequency"`     // Hz
	InnerPhase float64 `mapstructure:"inner_phase" yaml:"inner_phase"` // radians
	FadeIn     float64 `mapstructure:"fade_in" yaml:"fade_in"`
	FadeOut    float64 `mapstructure:"fade_out" yaml:"fade_out"`
}

// ShadowConfig maps height to shadow size and opacity
type ShadowConfig struct {
	MaxHeight  float64 `mapstructure:"max_height" yaml:"max_height"`
	MinScale   float64 `mapstructure:"min_scale" yaml:"min_scale"`
	MinOpacity float64 `mapstructure:"min_opacity" yaml:"min_opacity"`
	MaxOpacity float64 `mapstructure:"max_opacity" yaml:"max_opacity"`
}

// ControllerConfig bounds the request queue and state history
type ControllerConfig struct {
	MaxQueueSize    int `mapstructure:"max_queue_size" yaml:"max_queue_size"`
	HistorySize     int `mapstructure:"history_size" yaml:"history_size"`
	DefaultPriority int `mapstructure:"default_priority" yaml:"default_priority"`
}

// DebugConfig configures the debug websocket server
type DebugConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr    string `mapstructure:"listen_addr" yaml:"listen_addr"`
}

// WindowConfig configures the preview window
type WindowConfig struct {
	Title  string `mapstructure:"title" yaml:"title"`
	Width  int    `mapstructure:"width" yaml:"width"`
	Height int    `mapstructure:"height" yaml:"height"`
}

// LogConfig configures logging
type LogConfig struct {
	Level   string `mapstructure:"level" yaml:"level"`
	Dir     string `mapstructure:"dir" yaml:"dir"` // empty means ~/.anty/logs
	Console bool   `mapstructure:"console" yaml:"console"`
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		Character: CharacterConfig{
			Size:          160,
			BaseScale:     1,
			ReferenceSize: 160,
		},
		Idle: IdleConfig{
			Amplitude:         8,
			Rotation:          2,
			Breathe:           1.02,
			Duration:          2.5,
			BlinkMinInterval:  8,
			BlinkMaxInterval:  15,
			DoubleBlinkChance: 0.2,
		},
		Glow: GlowConfig{
			Stiffness:  120,
			Damping:    14,
			Amplitude:  3,
			Frequency:  0.4,
			InnerPhase: 1.0471975511965976, // pi/3
			FadeIn:     0.4,
			FadeOut:    0.3,
		},
		Shadow: ShadowConfig{
			MaxHeight:  50,
			MinScale:   0.6,
			MinOpacity: 0.25,
			MaxOpacity: 1,
		},
		Controller: ControllerConfig{
			MaxQueueSize:    5,
			HistorySize:     50,
			DefaultPriority: 1,
		},
		Debug: DebugConfig{
			Enabled: false,
			Addr:    "127.0.0.1:7717",
		},
		Window: WindowConfig{
			Title:  "Anty",
			Width:  360,
			Height: 360,
		},
		Log: LogConfig{
			Level:   "info",
			Console: true,
		},
	}
}

// SizeScale is the character size relative to the reference size.
func (c *Config) SizeScale() float64 {
	if c.Character.ReferenceSize <= 0 || c.Character.Size <= 0 {
		return 1
	}
	return c.Character.Size / c.Character.ReferenceSize
}

// Validate reports every out-of-range value.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...)))
	}
	unit := func(name string, v float64) {
		if v < 0 || v > 1 {
			fail("%s must be within [0,1], got %g", name, v)
		}
	}

	if c.Character.Size <= 0 {
		fail("character.size must be positive")
	}
	if c.Character.ReferenceSize <= 0 {
		fail("character.reference_size must be positive")
	}
	if c.Character.BaseScale <= 0 {
		fail("character.base_scale must be positive")
	}
	if c.Idle.Duration <= 0 {
		fail("idle.duration must be positive")
	}
	if c.Idle.BlinkMinInterval <= 0 || c.Idle.BlinkMaxInterval < c.Idle.BlinkMinInterval {
		fail("idle blink interval [%g,%g] is not a valid range", c.Idle.BlinkMinInterval, c.Idle.BlinkMaxInterval)
	}
	unit("idle.double_blink_chance", c.Idle.DoubleBlinkChance)
	if c.Glow.Stiffness <= 0 || c.Glow.Damping < 0 {
		fail("glow spring needs positive stiffness and non-negative damping")
	}
	if c.Shadow.MaxHeight <= 0 {
		fail("shadow.max_height must be positive")
	}
	unit("shadow.min_scale", c.Shadow.MinScale)
	unit("shadow.min_opacity", c.Shadow.MinOpacity)
	unit("shadow.max_opacity", c.Shadow.MaxOpacity)
	if c.Controller.MaxQueueSize < 1 {
		fail("controller.max_queue_size must be at least 1")
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		fail("window size must be positive")
	}
	return errors.Join(errs...)
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".anty"), nil
}

// Load reads ~/.anty/config.yaml (or ./config.yaml) plus ANTY_ environment
// overrides. A missing file is created from the defaults.
func Load() (*Config, string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return DefaultConfig(), "", err
	}
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return DefaultConfig(), "", err
	}

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	path := filepath.Join(configDir, "config.yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return DefaultConfig(), "", fmt.Errorf("read config: %w", err)
		}
		// Config file not found, use defaults and create one
		if err := Save(DefaultConfig(), path); err != nil {
			return DefaultConfig(), "", err
		}
	} else {
		path = v.ConfigFileUsed()
	}

	cfg, err := decode(v)
	return cfg, path, err
}

// LoadFile reads a specific YAML file plus environment overrides.
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	// Environment variable overrides, e.g. ANTY_CHARACTER_SIZE
	v.SetEnvPrefix("ANTY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// setDefaults registers every key so environment overrides reach Unmarshal.
func setDefaults(v *viper.Viper, cfg *Config) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return
	}
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, val := range m {
			key := prefix + k
			if sub, ok := val.(map[string]any); ok {
				walk(key+".", sub)
				continue
			}
			v.SetDefault(key, val)
		}
	}
	walk("", tree)
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the configuration to path
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
