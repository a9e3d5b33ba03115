// Package style models AI response styles: the built-in presets, the
// per-user custom styles stored by the server, and the client-side
// registry that resolves a style name to its prompt.
package style

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// NeutralColor tags styles without a color of their own.
const NeutralColor = "badge-neutral"

type Kind uint8

const (
	KindBuiltin Kind = iota + 1
	KindCustom
)

// Ref identifies a style by provenance: a built-in preset key or a
// server-assigned custom id. Decoded refs are always custom because
// built-ins never travel over the wire.
type Ref struct {
	kind Kind
	key  string
}

func BuiltinRef(key string) Ref { return Ref{kind: KindBuiltin, key: key} }

func CustomRef(id string) Ref { return Ref{kind: KindCustom, key: id} }

func (r Ref) Kind() Kind { return r.kind }

func (r Ref) IsBuiltin() bool { return r.kind == KindBuiltin }

// CustomID returns the server id of a custom style.
func (r Ref) CustomID() (string, bool) {
	if r.kind != KindCustom {
		return "", false
	}
	return r.key, true
}

func (r Ref) String() string {
	switch r.kind {
	case KindBuiltin:
		return "builtin:" + r.key
	case KindCustom:
		return "custom:" + r.key
	default:
		return "none"
	}
}

func (r Ref) MarshalJSON() ([]byte, error) {
	if r.kind == KindCustom {
		if _, err := strconv.ParseUint(r.key, 10, 64); err == nil {
			return []byte(r.key), nil
		}
	}
	return json.Marshal(r.key)
}

func (r *Ref) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return errors.New("style id is null")
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = CustomRef(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("style id: %w", err)
	}
	*r = CustomRef(n.String())
	return nil
}

type Style struct {
	ID          Ref    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Prompt      string `json:"prompt"`
	Color       string `json:"color"`
}

func (s Style) IsBuiltin() bool { return s.ID.IsBuiltin() }
