package style

import (
	"context"
	"errors"
	"fmt"

	"echomemo/internal/api"
	"echomemo/internal/validation"

	"github.com/rs/zerolog"
)

// ErrCorruptPreference is returned by a PreferenceStore whose stored value cannot be read.
var ErrCorruptPreference = errors.New("stored style preference is unreadable")

// Backend is the server side of the custom style set.
type Backend interface {
	ListStyles(ctx context.Context) ([]Style, error)
	CreateStyle(ctx context.Context, req api.StyleRequest) error
	UpdateStyle(ctx context.Context, id string, req api.StyleRequest) error
	DeleteStyle(ctx context.Context, id string) error
}

// PreferenceStore persists the selected style name between runs.
type PreferenceStore interface {
	StyleName() (string, error)
	SetStyleName(name string) error
	ClearStyleName() error
}

type Registry struct {
	backend Backend
	prefs   PreferenceStore
	cache   *Cache
	log     zerolog.Logger
}

type Option func(*Registry)

func WithLogger(log zerolog.Logger) Option {
	return func(r *Registry) { r.log = log }
}

func NewRegistry(backend Backend, prefs PreferenceStore, opts ...Option) *Registry {
	r := &Registry{backend: backend, prefs: prefs, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	r.cache = NewCache(backend.ListStyles, r.log)
	return r
}

// Resolve never fails: unknown names fall back to the default preset.
func (r *Registry) Resolve(ctx context.Context, name string) Style {
	if s, ok := LookupBuiltin(name); ok {
		return s
	}
	for _, s := range r.cache.Get(ctx) {
		if s.Name == name {
			return s
		}
	}
	return Default()
}

func (r *Registry) Current(ctx context.Context) Style {
	return r.Resolve(ctx, r.CurrentStyleName())
}

func (r *Registry) CurrentStyleName() string {
	name, err := r.prefs.StyleName()
	if err != nil {
		r.log.Warn().Err(err).Msg("style preference unreadable, clearing")
		if cerr := r.prefs.ClearStyleName(); cerr != nil {
			r.log.Error().Err(cerr).Msg("clear style preference")
		}
		return Default().Name
	}
	if name == "" {
		return Default().Name
	}
	return name
}

func (r *Registry) SetCurrentStyle(name string) error {
	return r.prefs.SetStyleName(name)
}

// ColorOf only knows built-ins; custom styles carry their own color.
func (r *Registry) ColorOf(name string) string {
	if s, ok := LookupBuiltin(name); ok {
		return s.Color
	}
	return NeutralColor
}

// All returns the presets followed by the custom set.
func (r *Registry) All(ctx context.Context) []Style {
	custom := r.cache.Get(ctx)
	out := make([]Style, 0, len(builtins)+len(custom))
	out = append(out, builtins...)
	return append(out, custom...)
}

// Custom returns only the user's own styles.
func (r *Registry) Custom(ctx context.Context) []Style {
	return r.cache.Get(ctx)
}

func (r *Registry) Add(ctx context.Context, req api.StyleRequest) error {
	if err := validation.Struct(req); err != nil {
		return err
	}
	if err := r.backend.CreateStyle(ctx, req); err != nil {
		return fmt.Errorf("add style: %w", err)
	}
	r.cache.Refresh(ctx)
	return nil
}

// Update keeps the selection on a renamed style.
func (r *Registry) Update(ctx context.Context, id string, req api.StyleRequest) error {
	if err := validation.Struct(req); err != nil {
		return err
	}
	old, found := r.findCustom(ctx, id)
	if err := r.backend.UpdateStyle(ctx, id, req); err != nil {
		return fmt.Errorf("update style: %w", err)
	}
	r.cache.Refresh(ctx)

	if found && old.Name != req.Name && r.CurrentStyleName() == old.Name {
		return r.prefs.SetStyleName(req.Name)
	}
	return nil
}

// Delete falls back to the default preset when the deleted style was selected.
func (r *Registry) Delete(ctx context.Context, id string) error {
	old, found := r.findCustom(ctx, id)
	if err := r.backend.DeleteStyle(ctx, id); err != nil {
		return fmt.Errorf("delete style: %w", err)
	}
	r.cache.Refresh(ctx)

	if found && r.CurrentStyleName() == old.Name {
		return r.prefs.SetStyleName(Default().Name)
	}
	return nil
}

func (r *Registry) findCustom(ctx context.Context, id string) (Style, bool) {
	for _, s := range r.cache.Get(ctx) {
		if cid, ok := s.ID.CustomID(); ok && cid == id {
			return s, true
		}
	}
	return Style{}, false
}
