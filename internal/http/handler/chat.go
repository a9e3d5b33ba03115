package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"echomemo/internal/api"
	"echomemo/internal/auth"
	"echomemo/internal/chat"
	"echomemo/internal/metrics"
	"echomemo/internal/ratelimit"

	"github.com/rs/zerolog"
)

// CompletionDeadline bounds one streamed completion.
const CompletionDeadline = 60 * time.Second

type Completer interface {
	Configured() bool
	Stream(ctx context.Context, system, user string, emit func(string) error) error
}

type ChatHandler struct {
	AI      Completer
	Limiter *ratelimit.Keyed
	Metrics *metrics.Metrics
	Log     zerolog.Logger
}

func (h *ChatHandler) Complete(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	if h.Limiter != nil && !h.Limiter.Allow(strconv.FormatUint(uid, 10)) {
		h.outcome(metrics.OutcomeRateLimited)
		writeError(w, http.StatusTooManyRequests, "too many completion requests")
		return
	}

	var req api.ChatRequest
	if !decode(w, r, &req) {
		return
	}
	system, user := req.Split()
	if strings.TrimSpace(user) == "" {
		writeError(w, http.StatusBadRequest, "prompt required")
		return
	}
	if !h.AI.Configured() {
		writeError(w, http.StatusInternalServerError, chat.ErrNotConfigured.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), CompletionDeadline)
	defer cancel()

	rc := http.NewResponseController(w)
	started := false
	err := h.AI.Stream(ctx, system, user, func(chunk string) error {
		if !started {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("Cache-Control", "no-cache")
			w.Header().Set("X-Accel-Buffering", "no")
			w.WriteHeader(http.StatusOK)
			started = true
		}
		if _, err := w.Write([]byte(chunk)); err != nil {
			return err
		}
		return rc.Flush()
	})

	if err == nil {
		if !started {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusOK)
		}
		h.outcome(metrics.OutcomeOK)
		return
	}

	if started {
		h.outcome(metrics.OutcomeAborted)
		h.Log.Warn().Err(err).Uint64("user_id", uid).Msg("completion stream ended early")
		return
	}

	var upErr *chat.UpstreamError
	switch {
	case errors.Is(err, chat.ErrNotConfigured):
		writeError(w, http.StatusInternalServerError, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		h.outcome(metrics.OutcomeAborted)
		writeError(w, http.StatusGatewayTimeout, "completion timed out")
	case errors.As(err, &upErr):
		h.outcome(metrics.OutcomeUpstream)
		h.Log.Error().Int("upstream_status", upErr.Status).Str("body", upErr.Body).Msg("completion upstream error")
		writeError(w, http.StatusBadGateway, "completion backend error")
	default:
		h.outcome(metrics.OutcomeUpstream)
		h.Log.Error().Err(err).Msg("completion failed")
		writeError(w, http.StatusBadGateway, "completion backend error")
	}
}

func (h *ChatHandler) outcome(o string) {
	if h.Metrics != nil {
		h.Metrics.Completion(o)
	}
}
