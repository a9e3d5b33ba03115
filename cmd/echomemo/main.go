package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"echomemo/internal/auth"
	"echomemo/internal/chat"
	"echomemo/internal/config"
	"echomemo/internal/db"
	httpx "echomemo/internal/http"
	"echomemo/internal/logger"
	"echomemo/internal/metrics"
	"echomemo/internal/note"
	"echomemo/internal/ratelimit"
	"echomemo/internal/style"
)

// chatBurst is how many completions a user may fire back to back.
const chatBurst = 3

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("echomemo", "info", false)
		bootLog.Fatal().Err(err).Msg("config")
	}
	log := logger.New("echomemo", cfg.LogLevel, cfg.LogPretty)

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}

	if cfg.AIAPIKey == "" || cfg.AIAPIURL == "" {
		log.Warn().Msg("AI_API_KEY or AI_API_URL not set; /api/chat will answer 500")
	}

	limiter := ratelimit.PerMinute(cfg.ChatRatePerMin, chatBurst)
	defer limiter.Stop()

	r := httpx.NewRouter(httpx.Deps{
		Config:  cfg,
		JWT:     auth.NewJWT(cfg.JWTSecret),
		Log:     log,
		Metrics: metrics.New(),
		Limiter: limiter,
		Users:   &auth.Service{DB: gdb},
		Notes:   &note.Service{DB: gdb},
		Styles:  &style.Store{DB: gdb},
		AI: chat.New(chat.Config{
			APIKey:  cfg.AIAPIKey,
			BaseURL: cfg.AIAPIURL,
			Model:   cfg.AIAPIModel,
		}, log.With().Str("component", "chat").Logger()),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	log.Info().Msg("stopped")
}
