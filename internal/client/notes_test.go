package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"echomemo/internal/api"
	"echomemo/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func tsp(s string) *time.Time {
	t := ts(s)
	return &t
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNote_UnmarshalAcceptsNaiveTimesAndNumericID(t *testing.T) {
	var n Note
	body := `{"id": 17, "content": "hi", "create_time": "2024-03-01T10:00:00", "update_time": null, "ai_response": "喵"}`
	require.NoError(t, json.Unmarshal([]byte(body), &n))

	assert.Equal(t, "17", n.ID)
	assert.Equal(t, ts("2024-03-01T10:00:00Z"), n.CreateTime)
	assert.Nil(t, n.UpdateTime)
	assert.Equal(t, "喵", n.AIResponse)
}

func TestNote_UnmarshalRejectsBadTime(t *testing.T) {
	var n Note
	err := json.Unmarshal([]byte(`{"id":"a","content":"x","create_time":"yesterday"}`), &n)
	assert.Error(t, err)
}

func TestShiftTimezone(t *testing.T) {
	in := []Note{
		{ID: "a", CreateTime: ts("2024-01-01T20:00:00Z")},
		{ID: "b", CreateTime: ts("2024-01-01T00:00:00Z"), UpdateTime: tsp("2024-01-02T00:00:00Z")},
	}
	out := ShiftTimezone(in)

	assert.Equal(t, ts("2024-01-02T04:00:00Z"), out[0].CreateTime)
	assert.Equal(t, ts("2024-01-01T08:00:00Z"), out[1].CreateTime)
	assert.Equal(t, ts("2024-01-02T08:00:00Z"), *out[1].UpdateTime)

	// input untouched
	assert.Equal(t, ts("2024-01-01T20:00:00Z"), in[0].CreateTime)
	assert.Equal(t, ts("2024-01-02T00:00:00Z"), *in[1].UpdateTime)
}

func TestSortByRecency_UpdateTimeWins(t *testing.T) {
	notes := []Note{
		{ID: "old-created-recent-edit", CreateTime: ts("2024-01-01T00:00:00Z"), UpdateTime: tsp("2024-01-05T00:00:00Z")},
		{ID: "newest-created", CreateTime: ts("2024-01-04T00:00:00Z")},
		{ID: "oldest", CreateTime: ts("2024-01-02T00:00:00Z")},
		{ID: "middle-edit", CreateTime: ts("2023-12-01T00:00:00Z"), UpdateTime: tsp("2024-01-03T00:00:00Z")},
	}
	SortByRecency(notes)

	var ids []string
	for _, n := range notes {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"old-created-recent-edit", "newest-created", "middle-edit", "oldest"}, ids)

	for i := 1; i < len(notes); i++ {
		assert.True(t, notes[i-1].LastActivity().After(notes[i].LastActivity()))
	}
}

func TestListNotes_NormalizesAndSendsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "/api/notes", r.URL.Path)
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": "1", "content": "a", "create_time": "2024-01-01T00:00:00Z"},
			{"id": "2", "content": "b", "create_time": "2024-01-02T00:00:00Z"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken("tok"))
	notes, err := c.ListNotes(context.Background())
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "2", notes[0].ID)
	assert.Equal(t, ts("2024-01-02T08:00:00Z"), notes[0].CreateTime)
}

func TestListAndSearch_UnauthorizedIsSessionExpired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken("stale"))
	_, err := c.ListNotes(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)

	_, err = c.SearchNotes(context.Background(), "x")
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestSearchNotes_EscapesKeywordAndReturnsEmptyNotNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/notes/search", r.URL.Path)
		assert.Equal(t, "猫 & dog", r.URL.Query().Get("keyword"))
		writeJSON(w, http.StatusOK, []any{})
	}))
	defer srv.Close()

	notes, err := New(srv.URL).SearchNotes(context.Background(), "猫 & dog")
	require.NoError(t, err)
	assert.NotNil(t, notes)
	assert.Empty(t, notes)
}

func TestCreateNote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var in api.NoteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "today", in.Content)
		assert.Equal(t, "喵喵", in.AIStyle)
		writeJSON(w, http.StatusCreated, map[string]any{
			"id": "n1", "content": in.Content, "ai_response": in.AIResponse, "ai_style": in.AIStyle,
			"create_time": "2024-01-01T00:00:00Z",
		})
	}))
	defer srv.Close()

	n, err := New(srv.URL).CreateNote(context.Background(), api.NoteRequest{Content: "today", AIResponse: "喵", AIStyle: "喵喵"})
	require.NoError(t, err)
	assert.Equal(t, "n1", n.ID)
	assert.Equal(t, ts("2024-01-01T08:00:00Z"), n.CreateTime)
}

func TestCreateNote_EmptyContentFailsLocally(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	_, err := New(srv.URL).CreateNote(context.Background(), api.NoteRequest{})
	var verr *validation.Error
	assert.True(t, errors.As(err, &verr))
	assert.False(t, called)
}

func TestUpdateAndDeleteNote(t *testing.T) {
	var methods []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method+" "+r.URL.Path)
		switch r.Method {
		case http.MethodPut:
			writeJSON(w, http.StatusCreated, map[string]any{
				"id": "n1", "content": "edited", "create_time": "2024-01-01T00:00:00Z", "update_time": "2024-01-03T00:00:00Z",
			})
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	n, err := c.UpdateNote(context.Background(), "n1", api.NoteRequest{Content: "edited"})
	require.NoError(t, err)
	require.NotNil(t, n.UpdateTime)
	assert.Equal(t, ts("2024-01-03T08:00:00Z"), *n.UpdateTime)

	require.NoError(t, c.DeleteNote(context.Background(), "n1"))
	assert.Equal(t, []string{"PUT /api/notes/n1", "DELETE /api/notes/n1"}, methods)
}

func TestServerErrorIsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "db down"})
	}))
	defer srv.Close()

	err := New(srv.URL).DeleteNote(context.Background(), "n1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "db down", apiErr.Message)
	assert.True(t, IsStatus(err, http.StatusInternalServerError))
}

func TestStreamCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in api.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "be a cat", in.System)
		assert.Equal(t, "rainy day", in.Prompt)

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		flusher := w.(http.Flusher)
		for _, chunk := range []string{"喵", "～", " done"} {
			_, _ = io.WriteString(w, chunk)
			flusher.Flush()
		}
	}))
	defer srv.Close()

	rc, err := New(srv.URL).StreamCompletion(context.Background(), "be a cat", "rainy day")
	require.NoError(t, err)
	defer rc.Close()

	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "喵～ done", string(b))
}

func TestStreamCompletion_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "API key or URL is not set"})
	}))
	defer srv.Close()

	_, err := New(srv.URL).StreamCompletion(context.Background(), "s", "p")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "API key or URL is not set", apiErr.Message)
}
