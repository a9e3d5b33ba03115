package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"echomemo/internal/api"
	"echomemo/internal/auth"
	"echomemo/internal/style"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type StyleStore interface {
	List(ctx context.Context, userID uint64) ([]style.CustomStyle, error)
	Create(ctx context.Context, userID uint64, d style.Draft) (*style.CustomStyle, error)
	Update(ctx context.Context, userID, id uint64, d style.Draft) (*style.CustomStyle, error)
	Delete(ctx context.Context, userID, id uint64) error
}

type StylesHandler struct {
	Store StyleStore
	Log   zerolog.Logger
}

func (h *StylesHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	rows, err := h.Store.List(r.Context(), uid)
	if err != nil {
		h.Log.Error().Err(err).Msg("list styles")
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	out := make([]style.Style, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Style())
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *StylesHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req api.StyleRequest
	if !decode(w, r, &req) {
		return
	}

	row, err := h.Store.Create(r.Context(), uid, draft(req))
	if err != nil {
		h.writeStyleError(w, "create style", err)
		return
	}
	writeJSON(w, http.StatusCreated, row.Style())
}

func (h *StylesHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, ok := styleID(w, r)
	if !ok {
		return
	}
	var req api.StyleRequest
	if !decode(w, r, &req) {
		return
	}

	row, err := h.Store.Update(r.Context(), uid, id, draft(req))
	if err != nil {
		h.writeStyleError(w, "update style", err)
		return
	}
	writeJSON(w, http.StatusOK, row.Style())
}

func (h *StylesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, ok := styleID(w, r)
	if !ok {
		return
	}
	if err := h.Store.Delete(r.Context(), uid, id); err != nil {
		h.writeStyleError(w, "delete style", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func styleID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return 0, false
	}
	return id, true
}

func (h *StylesHandler) writeStyleError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, style.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, style.ErrNameTaken):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.Log.Error().Err(err).Msg(op)
		writeError(w, http.StatusInternalServerError, "server error")
	}
}

func draft(req api.StyleRequest) style.Draft {
	return style.Draft{Name: req.Name, Description: req.Description, Prompt: req.Prompt, Color: req.Color}
}
