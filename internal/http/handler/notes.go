package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"echomemo/internal/api"
	"echomemo/internal/auth"
	"echomemo/internal/note"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type NoteService interface {
	List(ctx context.Context, userID uint64) ([]note.Note, error)
	Search(ctx context.Context, userID uint64, keyword string) ([]note.Note, error)
	Create(ctx context.Context, userID uint64, in note.Input) (*note.Note, error)
	Update(ctx context.Context, userID uint64, id string, in note.Input) (*note.Note, error)
	Delete(ctx context.Context, userID uint64, id string) error
}

type NotesHandler struct {
	Svc NoteService
	Log zerolog.Logger
}

type noteJSON struct {
	ID         string     `json:"id"`
	Content    string     `json:"content"`
	AIResponse string     `json:"ai_response"`
	AIStyle    string     `json:"ai_style"`
	CreateTime time.Time  `json:"create_time"`
	UpdateTime *time.Time `json:"update_time"`
}

func toNoteJSON(n note.Note) noteJSON {
	out := noteJSON{
		ID:         n.ID,
		Content:    n.Content,
		AIResponse: n.AIResponse,
		AIStyle:    n.AIStyle,
		CreateTime: n.CreateTime.UTC(),
	}
	if n.UpdateTime != nil {
		t := n.UpdateTime.UTC()
		out.UpdateTime = &t
	}
	return out
}

func toNotesJSON(rows []note.Note) []noteJSON {
	out := make([]noteJSON, 0, len(rows))
	for _, n := range rows {
		out = append(out, toNoteJSON(n))
	}
	return out
}

func (h *NotesHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	rows, err := h.Svc.List(r.Context(), uid)
	if err != nil {
		h.Log.Error().Err(err).Msg("list notes")
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, http.StatusOK, toNotesJSON(rows))
}

func (h *NotesHandler) Search(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	rows, err := h.Svc.Search(r.Context(), uid, r.URL.Query().Get("keyword"))
	if err != nil {
		h.Log.Error().Err(err).Msg("search notes")
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, http.StatusOK, toNotesJSON(rows))
}

func (h *NotesHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req api.NoteRequest
	if !decode(w, r, &req) {
		return
	}

	n, err := h.Svc.Create(r.Context(), uid, noteInput(req))
	if err != nil {
		h.writeNoteError(w, "create note", err)
		return
	}
	writeJSON(w, http.StatusCreated, toNoteJSON(*n))
}

// Update answers 201 like Create; existing clients expect it.
func (h *NotesHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req api.NoteRequest
	if !decode(w, r, &req) {
		return
	}

	n, err := h.Svc.Update(r.Context(), uid, chi.URLParam(r, "id"), noteInput(req))
	if err != nil {
		h.writeNoteError(w, "update note", err)
		return
	}
	writeJSON(w, http.StatusCreated, toNoteJSON(*n))
}

func (h *NotesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	if err := h.Svc.Delete(r.Context(), uid, chi.URLParam(r, "id")); err != nil {
		h.writeNoteError(w, "delete note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotesHandler) writeNoteError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, note.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, note.ErrEmptyContent):
		writeError(w, http.StatusBadRequest, "content required")
	default:
		h.Log.Error().Err(err).Msg(op)
		writeError(w, http.StatusInternalServerError, "server error")
	}
}

func noteInput(req api.NoteRequest) note.Input {
	return note.Input{Content: req.Content, AIResponse: req.AIResponse, AIStyle: req.AIStyle}
}
