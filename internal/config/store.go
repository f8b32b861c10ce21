package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/soar/inputmap/internal/binding"
	"github.com/soar/inputmap/internal/physical"
)

const (
	keyButtonSet = "active_button_set"
	keyPreferred = "preferred_gamepad"
	keyBindings  = "bindings"
	keyKeyboard  = "keyboard"
	keyGamepad   = "gamepad"
)

// ErrNoBindings is returned by Load when nothing has been stored yet.
var ErrNoBindings = errors.New("no stored bindings")

// Store persists binding.Config to a single file. The format follows the
// file extension (json, toml, yaml).
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Save writes cfg, replacing the file.
func (s *Store) Save(cfg binding.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := viper.New()
	v.Set(keyButtonSet, cfg.ActiveButtonSet)
	v.Set(keyPreferred, cfg.PreferredGamepad)
	bindings := make(map[string]any, len(cfg.Bindings))
	for name, a := range cfg.Bindings {
		bindings[name] = map[string]any{
			keyKeyboard: string(a.Keyboard),
			keyGamepad:  int(a.Gamepad),
		}
	}
	v.Set(keyBindings, bindings)

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create bindings dir: %w", err)
		}
	}
	if err := v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("write bindings: %w", err)
	}
	return nil
}

// Load reads the stored configuration. A missing file yields an empty
// Config and ErrNoBindings. Entries that cannot be coerced are left out and
// reported as binding.ErrMalformedConfig next to whatever did load, so the
// caller can still apply the rest.
func (s *Store) Load() (binding.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := binding.Config{Bindings: make(map[string]binding.Assignment)}

	v := viper.New()
	v.SetConfigFile(s.path)
	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, ErrNoBindings
		}
		return cfg, fmt.Errorf("read bindings %s: %w: %w", s.path, err, binding.ErrMalformedConfig)
	}

	var (
		errs []error
		err  error
	)
	if set, err := cast.ToIntE(v.Get(keyButtonSet)); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w: %w", keyButtonSet, err, binding.ErrMalformedConfig))
	} else {
		cfg.ActiveButtonSet = set
	}
	if name, err := cast.ToStringE(v.Get(keyPreferred)); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w: %w", keyPreferred, err, binding.ErrMalformedConfig))
	} else {
		cfg.PreferredGamepad = name
	}

	var raw map[string]any
	if v.IsSet(keyBindings) {
		if raw, err = cast.ToStringMapE(v.Get(keyBindings)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w: %w", keyBindings, err, binding.ErrMalformedConfig))
		}
	}
	for name, entry := range raw {
		a, err := assignment(entry)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s.%s: %w", keyBindings, name, err))
			continue
		}
		cfg.Bindings[name] = a
	}
	return cfg, errors.Join(errs...)
}

func assignment(entry any) (binding.Assignment, error) {
	m, err := cast.ToStringMapE(entry)
	if err != nil {
		return binding.Assignment{}, fmt.Errorf("%w: %w", err, binding.ErrMalformedConfig)
	}
	rawKey, hasKey := m[keyKeyboard]
	rawButton, hasButton := m[keyGamepad]
	if !hasKey || !hasButton {
		return binding.Assignment{}, fmt.Errorf("needs both %s and %s: %w", keyKeyboard, keyGamepad, binding.ErrMalformedConfig)
	}
	key, err := cast.ToStringE(rawKey)
	if err != nil {
		return binding.Assignment{}, fmt.Errorf("%s: %w: %w", keyKeyboard, err, binding.ErrMalformedConfig)
	}
	button, err := cast.ToIntE(rawButton)
	if err != nil {
		return binding.Assignment{}, fmt.Errorf("%s: %w: %w", keyGamepad, err, binding.ErrMalformedConfig)
	}
	return binding.Assignment{Keyboard: physical.Key(key), Gamepad: physical.Button(button)}, nil
}
