package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"echomemo/internal/api"
	"echomemo/internal/auth"
	"echomemo/internal/chat"
	"echomemo/internal/config"
	"echomemo/internal/metrics"
	"echomemo/internal/note"
	"echomemo/internal/ratelimit"
	"echomemo/internal/style"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*auth.User
}

func (f *fakeUsers) Register(ctx context.Context, username, email, password string) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[username]; ok {
		return nil, auth.ErrUserExists
	}
	hash, _ := auth.HashPassword(password)
	u := &auth.User{ID: uint64(len(f.users) + 1), Username: username, Email: email, PasswordHash: hash}
	f.users[username] = u
	return u, nil
}

func (f *fakeUsers) Authenticate(ctx context.Context, username, password string) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[username]
	if !ok || !auth.ComparePassword(u.PasswordHash, password) {
		return nil, auth.ErrInvalidCredentials
	}
	return u, nil
}

func (f *fakeUsers) ResetPassword(ctx context.Context, username, email, newPassword string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[username]
	if !ok || u.Email != email {
		return auth.ErrUserNotFound
	}
	u.PasswordHash, _ = auth.HashPassword(newPassword)
	return nil
}

type fakeNotes struct {
	mu    sync.Mutex
	notes []note.Note
}

func (f *fakeNotes) List(ctx context.Context, userID uint64) ([]note.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []note.Note
	for _, n := range f.notes {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotes) Search(ctx context.Context, userID uint64, keyword string) ([]note.Note, error) {
	all, _ := f.List(ctx, userID)
	var out []note.Note
	for _, n := range all {
		if strings.Contains(n.Content, keyword) || strings.Contains(n.AIResponse, keyword) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotes) Create(ctx context.Context, userID uint64, in note.Input) (*note.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := note.Note{
		ID: "n" + string(rune('0'+len(f.notes))), UserID: userID,
		Content: in.Content, AIResponse: in.AIResponse, AIStyle: in.AIStyle,
		CreateTime: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	f.notes = append(f.notes, n)
	return &n, nil
}

func (f *fakeNotes) Update(ctx context.Context, userID uint64, id string, in note.Input) (*note.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notes {
		if f.notes[i].ID == id && f.notes[i].UserID == userID {
			now := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
			f.notes[i].Content = in.Content
			f.notes[i].UpdateTime = &now
			n := f.notes[i]
			return &n, nil
		}
	}
	return nil, note.ErrNotFound
}

func (f *fakeNotes) Delete(ctx context.Context, userID uint64, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notes {
		if f.notes[i].ID == id && f.notes[i].UserID == userID {
			f.notes = append(f.notes[:i], f.notes[i+1:]...)
			return nil
		}
	}
	return note.ErrNotFound
}

type fakeStyles struct {
	mu   sync.Mutex
	rows []style.CustomStyle
}

func (f *fakeStyles) List(ctx context.Context, userID uint64) ([]style.CustomStyle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]style.CustomStyle{}, f.rows...), nil
}

func (f *fakeStyles) Create(ctx context.Context, userID uint64, d style.Draft) (*style.CustomStyle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.Name == d.Name {
			return nil, style.ErrNameTaken
		}
	}
	row := style.CustomStyle{ID: uint64(len(f.rows) + 1), UserID: userID, Name: d.Name, Description: d.Description, Prompt: d.Prompt, Color: style.NeutralColor}
	f.rows = append(f.rows, row)
	return &row, nil
}

func (f *fakeStyles) Update(ctx context.Context, userID, id uint64, d style.Draft) (*style.CustomStyle, error) {
	return nil, style.ErrNotFound
}

func (f *fakeStyles) Delete(ctx context.Context, userID, id uint64) error {
	return style.ErrNotFound
}

type fakeAI struct {
	configured bool
	chunks     []string
	err        error
	gotSystem  string
	gotUser    string
}

func (f *fakeAI) Configured() bool { return f.configured }

func (f *fakeAI) Stream(ctx context.Context, system, user string, emit func(string) error) error {
	f.gotSystem, f.gotUser = system, user
	for _, c := range f.chunks {
		if err := emit(c); err != nil {
			return err
		}
	}
	return f.err
}

type env struct {
	srv     *httptest.Server
	jwt     *auth.JWT
	ai      *fakeAI
	metrics *metrics.Metrics
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		jwt:     auth.NewJWT("test-secret"),
		ai:      &fakeAI{configured: true},
		metrics: metrics.New(),
	}
	limiter := ratelimit.PerMinute(60, 2)
	t.Cleanup(limiter.Stop)

	e.srv = httptest.NewServer(NewRouter(Deps{
		Config:  config.Config{},
		JWT:     e.jwt,
		Log:     zerolog.Nop(),
		Metrics: e.metrics,
		Limiter: limiter,
		Users:   &fakeUsers{users: map[string]*auth.User{}},
		Notes:   &fakeNotes{},
		Styles:  &fakeStyles{},
		AI:      e.ai,
	}))
	t.Cleanup(e.srv.Close)
	return e
}

func (e *env) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var rdr *strings.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = strings.NewReader(string(b))
	} else {
		rdr = strings.NewReader("")
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (e *env) login(t *testing.T) string {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/auth/register", "", api.RegisterRequest{Username: "amy", Email: "amy@example.com", Password: "secret1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/api/auth/login", "", api.LoginRequest{Username: "amy", Password: "secret1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tok := decodeBody[api.TokenResponse](t, resp)
	require.NotEmpty(t, tok.AccessToken)
	return tok.AccessToken
}

func TestAuthFlow(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	resp := e.do(t, http.MethodPost, "/api/auth/register", "", api.RegisterRequest{Username: "amy", Email: "amy@example.com", Password: "secret1"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.False(t, decodeBody[api.StatusResponse](t, resp).Success)

	resp = e.do(t, http.MethodPost, "/api/auth/login", "", api.LoginRequest{Username: "amy", Password: "wrong-one"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/api/auth/reset-password", "", api.ResetPasswordRequest{Username: "amy", Email: "nope@example.com", NewPassword: "newpass"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/api/auth/reset-password", "", api.ResetPasswordRequest{Username: "amy", Email: "amy@example.com", NewPassword: "newpass"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/api/auth/login", "", api.LoginRequest{Username: "amy", Password: "newpass"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegisterValidation(t *testing.T) {
	e := newEnv(t)

	resp := e.do(t, http.MethodPost, "/api/auth/register", "", api.RegisterRequest{Username: "a", Email: "bad", Password: "123"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody[api.ErrorResponse](t, resp)
	assert.Contains(t, body.Fields, "username")
	assert.Contains(t, body.Fields, "email")
	assert.Contains(t, body.Fields, "password")
}

func TestSessionCookies(t *testing.T) {
	e := newEnv(t)
	tok := e.login(t)

	resp := e.do(t, http.MethodPost, "/api/auth/set-cookie", "", api.SetCookieRequest{Token: tok})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cookies := map[string]*http.Cookie{}
	for _, c := range resp.Cookies() {
		cookies[c.Name] = c
	}
	require.Contains(t, cookies, auth.TokenCookie)
	assert.True(t, cookies[auth.TokenCookie].HttpOnly)
	assert.Equal(t, "amy", cookies["echo_mome_username"].Value)
	assert.False(t, cookies["echo_mome_username"].HttpOnly)

	// the cookie alone authenticates
	req, _ := http.NewRequest(http.MethodGet, e.srv.URL+"/api/me", nil)
	req.AddCookie(cookies[auth.TokenCookie])
	meResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer meResp.Body.Close()
	assert.Equal(t, http.StatusOK, meResp.StatusCode)

	resp = e.do(t, http.MethodPost, "/api/auth/clear-cookie", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	for _, c := range resp.Cookies() {
		assert.Equal(t, "", c.Value)
		assert.Less(t, c.MaxAge, 0)
	}

	resp = e.do(t, http.MethodPost, "/api/auth/set-cookie", "", api.SetCookieRequest{Token: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestNotesCRUD(t *testing.T) {
	e := newEnv(t)
	tok := e.login(t)

	resp := e.do(t, http.MethodGet, "/api/notes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/api/notes", tok, api.NoteRequest{Content: ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/api/notes", tok, api.NoteRequest{Content: "rainy tea", AIResponse: "喵~", AIStyle: "喵喵"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[map[string]any](t, resp)
	id := created["id"].(string)
	assert.Equal(t, "2024-01-02T03:04:05Z", created["create_time"])
	assert.Nil(t, created["update_time"])

	resp = e.do(t, http.MethodPut, "/api/notes/"+id, tok, api.NoteRequest{Content: "rainy coffee"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotNil(t, decodeBody[map[string]any](t, resp)["update_time"])

	resp = e.do(t, http.MethodGet, "/api/notes/search?keyword=coffee", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeBody[[]map[string]any](t, resp), 1)

	resp = e.do(t, http.MethodGet, "/api/notes/search?keyword=tea", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeBody[[]map[string]any](t, resp))

	resp = e.do(t, http.MethodDelete, "/api/notes/"+id, tok, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = e.do(t, http.MethodDelete, "/api/notes/"+id, tok, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStyles(t *testing.T) {
	e := newEnv(t)
	tok := e.login(t)

	req := api.StyleRequest{Name: "温柔", Description: "gentle words", Prompt: "be gentle"}
	resp := e.do(t, http.MethodPost, "/api/ai-styles", tok, req)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[map[string]any](t, resp)
	assert.Equal(t, float64(1), created["id"], "custom ids travel as numbers")
	assert.Equal(t, style.NeutralColor, created["color"])

	resp = e.do(t, http.MethodPost, "/api/ai-styles", tok, req)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/api/ai-styles", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var styles []style.Style
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&styles))
	require.Len(t, styles, 1)
	id, ok := styles[0].ID.CustomID()
	assert.True(t, ok)
	assert.Equal(t, "1", id)

	resp = e.do(t, http.MethodDelete, "/api/ai-styles/abc", tok, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestChatStreamsPlainText(t *testing.T) {
	e := newEnv(t)
	tok := e.login(t)
	e.ai.chunks = []string{"喵", "~ ", "hello"}

	resp := e.do(t, http.MethodPost, "/api/chat", tok, api.ChatRequest{System: "be a cat", Prompt: "hi"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain"))

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "喵~ hello", string(b))
	assert.Equal(t, "be a cat", e.ai.gotSystem)
	assert.Equal(t, "hi", e.ai.gotUser)
	n, err := testutil.GatherAndCount(e.metrics.Gatherer(), "echomemo_chat_completions_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestChatAcceptsMessageShape(t *testing.T) {
	e := newEnv(t)
	tok := e.login(t)

	resp := e.do(t, http.MethodPost, "/api/chat", tok, api.ChatRequest{Prompt: "system text", Message: "user text"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "system text", e.ai.gotSystem)
	assert.Equal(t, "user text", e.ai.gotUser)
}

func TestChatErrors(t *testing.T) {
	e := newEnv(t)
	tok := e.login(t)

	e.ai.configured = false
	resp := e.do(t, http.MethodPost, "/api/chat", tok, api.ChatRequest{Prompt: "hi"})
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "API key or URL is not set", decodeBody[api.ErrorResponse](t, resp).Error)

	e.ai.configured = true
	e.ai.err = &chat.UpstreamError{Status: 401, Body: "bad key"}
	resp = e.do(t, http.MethodPost, "/api/chat", tok, api.ChatRequest{Prompt: "hi"})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	// burst of 2 is spent
	e.ai.err = nil
	resp = e.do(t, http.MethodPost, "/api/chat", tok, api.ChatRequest{Prompt: "hi"})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/api/chat", "", api.ChatRequest{Prompt: "hi"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestChatTimeout(t *testing.T) {
	e := newEnv(t)
	tok := e.login(t)
	e.ai.err = errors.Join(errors.New("read upstream"), context.DeadlineExceeded)

	resp := e.do(t, http.MethodPost, "/api/chat", tok, api.ChatRequest{Prompt: "hi"})
	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	e := newEnv(t)

	resp := e.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(b), "echomemo_http_requests_total")
}
