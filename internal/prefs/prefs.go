// Package prefs persists client-side preferences in a YAML file: the
// selected AI style, the theme and the login session.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"echomemo/internal/style"

	"gopkg.in/yaml.v3"
)

const (
	ThemeLight = "cupcake"
	ThemeDark  = "dark"
)

type data struct {
	AIStyle  string `yaml:"ai_style,omitempty"`
	Theme    string `yaml:"theme,omitempty"`
	Token    string `yaml:"token,omitempty"`
	Username string `yaml:"username,omitempty"`
}

// File is safe for concurrent use within one process.
type File struct {
	path string
	mu   sync.Mutex
}

// DefaultPath is $XDG_CONFIG_HOME/echomemo/prefs.yaml or the platform equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "echomemo", "prefs.yaml"), nil
}

func Open(path string) *File {
	return &File{path: path}
}

func (f *File) Path() string { return f.path }

func (f *File) load() (data, error) {
	var d data
	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return d, nil
	}
	if err != nil {
		return d, err
	}
	if err := yaml.Unmarshal(b, &d); err != nil {
		return data{}, fmt.Errorf("%w: %s: %v", style.ErrCorruptPreference, f.path, err)
	}
	return d, nil
}

func (f *File) save(d data) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	b, err := yaml.Marshal(d)
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

// update applies fn to the stored values. A corrupt file starts over empty.
func (f *File) update(fn func(*data)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	d, err := f.load()
	if err != nil && !errors.Is(err, style.ErrCorruptPreference) {
		return err
	}
	fn(&d)
	return f.save(d)
}

func (f *File) read() (data, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

func (f *File) StyleName() (string, error) {
	d, err := f.read()
	if err != nil {
		return "", err
	}
	return d.AIStyle, nil
}

func (f *File) SetStyleName(name string) error {
	return f.update(func(d *data) { d.AIStyle = name })
}

func (f *File) ClearStyleName() error {
	return f.update(func(d *data) { d.AIStyle = "" })
}

// Theme falls back to the light theme for unset or unknown values.
func (f *File) Theme() string {
	d, err := f.read()
	if err != nil || (d.Theme != ThemeLight && d.Theme != ThemeDark) {
		return ThemeLight
	}
	return d.Theme
}

func (f *File) SetTheme(theme string) error {
	if theme != ThemeLight && theme != ThemeDark {
		return fmt.Errorf("unknown theme %q (want %s or %s)", theme, ThemeLight, ThemeDark)
	}
	return f.update(func(d *data) { d.Theme = theme })
}

// ToggleTheme switches between light and dark and returns the new theme.
func (f *File) ToggleTheme() (string, error) {
	next := ThemeDark
	if f.Theme() == ThemeDark {
		next = ThemeLight
	}
	return next, f.SetTheme(next)
}

func (f *File) Session() (token, username string, err error) {
	d, err := f.read()
	if err != nil {
		return "", "", err
	}
	return d.Token, d.Username, nil
}

func (f *File) SetSession(token, username string) error {
	return f.update(func(d *data) {
		d.Token = token
		d.Username = username
	})
}

func (f *File) ClearSession() error {
	return f.update(func(d *data) {
		d.Token = ""
		d.Username = ""
	})
}
