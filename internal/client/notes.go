package client

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"echomemo/internal/api"
	"echomemo/internal/validation"
)

// DisplayOffset shifts backend timestamps into the display timezone (UTC+8).
const DisplayOffset = 8 * time.Hour

type Note struct {
	ID         string     `json:"id"`
	Content    string     `json:"content"`
	CreateTime time.Time  `json:"create_time"`
	UpdateTime *time.Time `json:"update_time,omitempty"`
	AIResponse string     `json:"ai_response,omitempty"`
	AIStyle    string     `json:"ai_style,omitempty"`
}

// LastActivity is the update time when present, else the creation time.
func (n Note) LastActivity() time.Time {
	if n.UpdateTime != nil {
		return *n.UpdateTime
	}
	return n.CreateTime
}

// UnmarshalJSON accepts RFC 3339 timestamps as well as zone-less ones,
// which are read as UTC.
func (n *Note) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID         json.RawMessage `json:"id"`
		Content    string          `json:"content"`
		CreateTime string          `json:"create_time"`
		UpdateTime *string         `json:"update_time"`
		AIResponse *string         `json:"ai_response"`
		AIStyle    *string         `json:"ai_style"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	id, err := decodeID(raw.ID)
	if err != nil {
		return err
	}
	created, err := parseTime(raw.CreateTime)
	if err != nil {
		return fmt.Errorf("note %s create_time: %w", id, err)
	}

	out := Note{ID: id, Content: raw.Content, CreateTime: created}
	if raw.UpdateTime != nil && *raw.UpdateTime != "" {
		updated, err := parseTime(*raw.UpdateTime)
		if err != nil {
			return fmt.Errorf("note %s update_time: %w", id, err)
		}
		out.UpdateTime = &updated
	}
	if raw.AIResponse != nil {
		out.AIResponse = *raw.AIResponse
	}
	if raw.AIStyle != nil {
		out.AIStyle = *raw.AIStyle
	}
	*n = out
	return nil
}

func decodeID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("note id missing")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		return "", fmt.Errorf("note id: %w", err)
	}
	return num.String(), nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
}

func parseTime(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// ShiftTimezone returns copies of notes with DisplayOffset added to both timestamps.
func ShiftTimezone(notes []Note) []Note {
	out := make([]Note, len(notes))
	for i, n := range notes {
		out[i] = shiftOne(n)
	}
	return out
}

func shiftOne(n Note) Note {
	n.CreateTime = n.CreateTime.Add(DisplayOffset)
	if n.UpdateTime != nil {
		u := n.UpdateTime.Add(DisplayOffset)
		n.UpdateTime = &u
	}
	return n
}

// SortByRecency orders notes newest first by LastActivity, in place.
func SortByRecency(notes []Note) {
	slices.SortStableFunc(notes, func(a, b Note) int {
		return b.LastActivity().Compare(a.LastActivity())
	})
}

// Normalize shifts then sorts a batch received from the backend.
func Normalize(notes []Note) []Note {
	out := ShiftTimezone(notes)
	SortByRecency(out)
	return out
}

func (c *Client) ListNotes(ctx context.Context) ([]Note, error) {
	req, cancel := c.request(ctx)
	defer cancel()

	var notes []Note
	resp, err := req.SetResult(&notes).Get("/api/notes")
	if err := checkAuthed("list notes", resp, err); err != nil {
		return nil, err
	}
	return Normalize(notes), nil
}

// SearchNotes never returns nil on success, so an empty match set stays
// distinguishable from "no search".
func (c *Client) SearchNotes(ctx context.Context, keyword string) ([]Note, error) {
	req, cancel := c.request(ctx)
	defer cancel()

	var notes []Note
	resp, err := req.SetResult(&notes).SetQueryParam("keyword", keyword).Get("/api/notes/search")
	if err := checkAuthed("search notes", resp, err); err != nil {
		return nil, err
	}
	return Normalize(notes), nil
}

func (c *Client) CreateNote(ctx context.Context, in api.NoteRequest) (Note, error) {
	if err := validation.Struct(in); err != nil {
		return Note{}, err
	}
	req, cancel := c.request(ctx)
	defer cancel()

	var n Note
	resp, err := req.SetBody(in).SetResult(&n).Post("/api/notes")
	if err := checkAuthed("add note", resp, err); err != nil {
		return Note{}, err
	}
	return shiftOne(n), nil
}

func (c *Client) UpdateNote(ctx context.Context, id string, in api.NoteRequest) (Note, error) {
	if err := validation.Struct(in); err != nil {
		return Note{}, err
	}
	req, cancel := c.request(ctx)
	defer cancel()

	var n Note
	resp, err := req.SetBody(in).SetResult(&n).SetPathParam("id", id).Put("/api/notes/{id}")
	if err := checkAuthed("update note", resp, err); err != nil {
		return Note{}, err
	}
	return shiftOne(n), nil
}

func (c *Client) DeleteNote(ctx context.Context, id string) error {
	req, cancel := c.request(ctx)
	defer cancel()

	resp, err := req.SetPathParam("id", id).Delete("/api/notes/{id}")
	return checkAuthed("delete note", resp, err)
}
