// Package config loads application settings with viper and persists the
// binding configuration in a separate file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/soar/inputmap/internal/binding"
	"github.com/soar/inputmap/internal/device"
	"github.com/soar/inputmap/internal/icon"
	"github.com/soar/inputmap/internal/logical"
	"github.com/soar/inputmap/internal/physical"
)

const (
	envPrefix       = "INPUTMAP"
	configName      = "inputmap"
	defaultAddr     = ":8080"
	defaultBindings = "bindings.json"
)

// ErrInvalidSettings wraps every validation failure reported by Load.
var ErrInvalidSettings = errors.New("invalid settings")

type InputSettings struct {
	RepeatDelay    int     `mapstructure:"repeat_delay" toml:"repeat_delay"`
	RepeatInterval int     `mapstructure:"repeat_interval" toml:"repeat_interval"`
	StickDeadzone  float64 `mapstructure:"stick_deadzone" toml:"stick_deadzone"`
}

type ServerSettings struct {
	Addr string `mapstructure:"addr" toml:"addr"`
}

// FunctionSettings declares a custom logical function.
type FunctionSettings struct {
	Name     string   `mapstructure:"name" toml:"name"`
	Title    string   `mapstructure:"title" toml:"title"`
	Keyboard string   `mapstructure:"keyboard" toml:"keyboard"`
	Gamepad  int      `mapstructure:"gamepad" toml:"gamepad"`
	Aliases  []string `mapstructure:"aliases" toml:"aliases"`
}

type Settings struct {
	Input        InputSettings      `mapstructure:"input" toml:"input"`
	Icons        icon.Layout        `mapstructure:"icons" toml:"icons"`
	Server       ServerSettings     `mapstructure:"server" toml:"server"`
	Functions    []FunctionSettings `mapstructure:"functions" toml:"functions"`
	BindingsFile string             `mapstructure:"bindings_file" toml:"bindings_file"`
	NoTray       bool               `mapstructure:"no_tray" toml:"no_tray"`

	// ConfigFile is the settings file that was read, if any.
	ConfigFile string `mapstructure:"-" toml:"-"`
}

// NewFlagSet declares the command line flags understood by Load.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringP("config", "c", "", "settings file (default: ./inputmap.* or the user config dir)")
	fs.StringP("bindings", "b", "", "bindings file")
	fs.String("addr", defaultAddr, "inspector listen address")
	fs.Bool("no-tray", false, "do not show the system tray icon")
	fs.Bool("print-settings", false, "print the effective settings as TOML and exit")
	return fs
}

// Load reads settings from defaults, the settings file, INPUTMAP_*
// environment variables and fs, in increasing precedence. fs must already be
// parsed.
func Load(fs *pflag.FlagSet) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, flag := range map[string]string{
		"bindings_file": "bindings",
		"server.addr":   "addr",
		"no_tray":       "no-tray",
	} {
		if f := fs.Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", flag, err)
			}
		}
	}

	path, _ := fs.GetString("config")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if dir := userDir(); dir != "" {
			v.AddConfigPath(dir)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read settings: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	s.ConfigFile = v.ConfigFileUsed()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func setDefaults(v *viper.Viper) {
	layout := icon.DefaultLayout()
	v.SetDefault("input.repeat_delay", logical.DefaultRepeatDelay)
	v.SetDefault("input.repeat_interval", logical.DefaultRepeatInterval)
	v.SetDefault("input.stick_deadzone", device.DefaultStickDeadzone)
	v.SetDefault("icons.gamepad_base", layout.GamepadBase)
	v.SetDefault("icons.button_set_size", layout.ButtonSetSize)
	v.SetDefault("icons.button_sets", layout.ButtonSets)
	v.SetDefault("icons.unknown", layout.Unknown)
	v.SetDefault("server.addr", defaultAddr)
	v.SetDefault("bindings_file", DefaultBindingsPath())
	v.SetDefault("no_tray", false)
}

// DefaultBindingsPath is bindings.json in the user config dir, or in the
// working directory when there is none.
func DefaultBindingsPath() string {
	if dir := userDir(); dir != "" {
		return filepath.Join(dir, defaultBindings)
	}
	return defaultBindings
}

func userDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, configName)
}

// Validate reports every out-of-range value.
func (s *Settings) Validate() error {
	var errs []error
	if s.Input.RepeatDelay < 0 {
		errs = append(errs, fmt.Errorf("input.repeat_delay %d is negative: %w", s.Input.RepeatDelay, ErrInvalidSettings))
	}
	if s.Input.RepeatInterval <= 0 {
		errs = append(errs, fmt.Errorf("input.repeat_interval %d must be positive: %w", s.Input.RepeatInterval, ErrInvalidSettings))
	}
	if s.Input.StickDeadzone <= 0 || s.Input.StickDeadzone >= 1 {
		errs = append(errs, fmt.Errorf("input.stick_deadzone %v must be in (0, 1): %w", s.Input.StickDeadzone, ErrInvalidSettings))
	}
	if s.Icons.ButtonSetSize < physical.StandardButtonCount {
		errs = append(errs, fmt.Errorf("icons.button_set_size %d is smaller than %d: %w", s.Icons.ButtonSetSize, physical.StandardButtonCount, ErrInvalidSettings))
	}
	if s.Icons.ButtonSets <= 0 {
		errs = append(errs, fmt.Errorf("icons.button_sets %d must be positive: %w", s.Icons.ButtonSets, ErrInvalidSettings))
	}
	if s.Server.Addr == "" {
		errs = append(errs, fmt.Errorf("server.addr is empty: %w", ErrInvalidSettings))
	}
	for i, f := range s.Functions {
		if strings.TrimSpace(f.Name) == "" {
			errs = append(errs, fmt.Errorf("functions[%d]: empty name: %w", i, ErrInvalidSettings))
		}
	}
	return errors.Join(errs...)
}

// Definitions converts the custom functions for binding.NewTable.
func (s *Settings) Definitions() []binding.Definition {
	defs := make([]binding.Definition, 0, len(s.Functions))
	for _, f := range s.Functions {
		defs = append(defs, binding.Definition{
			Name:    f.Name,
			Title:   f.Title,
			Key:     physical.Key(f.Keyboard),
			Button:  physical.Button(f.Gamepad),
			Aliases: f.Aliases,
		})
	}
	return defs
}
