package http

import (
	"net/http"

	"echomemo/internal/auth"
	"echomemo/internal/config"
	"echomemo/internal/http/handler"
	mw "echomemo/internal/http/middleware"
	"echomemo/internal/metrics"
	"echomemo/internal/ratelimit"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type Deps struct {
	Config  config.Config
	JWT     *auth.JWT
	Log     zerolog.Logger
	Metrics *metrics.Metrics
	Limiter *ratelimit.Keyed

	Users  handler.UserService
	Notes  handler.NoteService
	Styles handler.StyleStore
	AI     handler.Completer
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.RequestLogger(d.Log))
	r.Use(chimw.Recoverer)
	if d.Metrics != nil {
		r.Use(mw.Metrics(d.Metrics))
	}

	if len(d.Config.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(d.Config.CORSAllowedOrigins, d.Config.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	requireAuth := auth.RequireAuth(d.JWT)

	ah := &handler.AuthHandler{Users: d.Users, JWT: d.JWT, Log: d.Log}
	sh := &handler.SessionHandler{JWT: d.JWT, Secure: d.Config.CookieSecure}
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", ah.Register)
		r.Post("/login", ah.Login)
		r.Post("/reset-password", ah.ResetPassword)
		r.Post("/set-cookie", sh.SetCookie)
		r.Post("/clear-cookie", sh.ClearCookie)
	})

	me := &handler.MeHandler{}
	r.With(requireAuth).Get("/api/me", me.Me)

	nh := &handler.NotesHandler{Svc: d.Notes, Log: d.Log}
	r.Route("/api/notes", func(r chi.Router) {
		r.Use(requireAuth)

		r.Get("/", nh.List)
		r.Post("/", nh.Create)
		r.Get("/search", nh.Search)
		r.Put("/{id}", nh.Update)
		r.Delete("/{id}", nh.Delete)
	})

	st := &handler.StylesHandler{Store: d.Styles, Log: d.Log}
	r.Route("/api/ai-styles", func(r chi.Router) {
		r.Use(requireAuth)

		r.Get("/", st.List)
		r.Post("/", st.Create)
		r.Put("/{id}", st.Update)
		r.Delete("/{id}", st.Delete)
	})

	ch := &handler.ChatHandler{AI: d.AI, Limiter: d.Limiter, Metrics: d.Metrics, Log: d.Log}
	r.With(requireAuth).Post("/api/chat", ch.Complete)

	return r
}
