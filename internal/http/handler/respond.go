package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"echomemo/internal/api"
	"echomemo/internal/validation"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, api.ErrorResponse{Error: msg})
}

// decode reads a JSON body into dst and validates it. On failure it has
// already written the 400 response.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return false
	}
	if err := validation.Struct(dst); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Error: verr.Error(), Fields: verr.Fields})
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid input")
		return false
	}
	return true
}
