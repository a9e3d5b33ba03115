package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"echomemo/internal/api"
	"echomemo/internal/client"
	"echomemo/internal/completion"
	"echomemo/internal/logger"
	"echomemo/internal/notesview"
	"echomemo/internal/prefs"
	"echomemo/internal/style"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

var errNotLoggedIn = errors.New("not logged in, run `echomemo-cli login` first")

// app carries what every command needs once flags are parsed.
type app struct {
	server    string
	prefsPath string
	debug     bool

	log    zerolog.Logger
	prefs  *prefs.File
	client *client.Client
	styles *style.Registry
}

func (a *app) init() error {
	_ = godotenv.Load()

	level := "warn"
	if a.debug {
		level = "debug"
	}
	a.log = logger.NewWithWriter(os.Stderr, "echomemo-cli", level, true)

	if a.prefsPath == "" {
		p, err := prefs.DefaultPath()
		if err != nil {
			return err
		}
		a.prefsPath = p
	}
	a.prefs = prefs.Open(a.prefsPath)

	token, _, err := a.prefs.Session()
	if err != nil {
		a.log.Warn().Err(err).Msg("preferences unreadable, session ignored")
	}
	a.client = client.New(a.server,
		client.WithToken(token),
		client.WithLogger(a.log.With().Str("component", "client").Logger()),
	)
	a.styles = style.NewRegistry(a.client, a.prefs, style.WithLogger(a.log))
	return nil
}

func (a *app) requireLogin() error {
	token, _, err := a.prefs.Session()
	if err != nil || token == "" {
		return errNotLoggedIn
	}
	return nil
}

func (a *app) dropSession() {
	if a.prefs == nil {
		return
	}
	if err := a.prefs.ClearSession(); err != nil {
		a.log.Error().Err(err).Msg("clear session")
	}
}

func (a *app) controller() *notesview.Controller {
	return notesview.NewController(a.client, notesview.WithLogger(a.log))
}

// requester streams completion text to out as it arrives.
func (a *app) requester(out io.Writer) *completion.Requester {
	return completion.NewRequester(a.styles, a.client,
		completion.WithLogger(a.log),
		completion.OnChunk(func(s string) { _, _ = io.WriteString(out, s) }),
	)
}

// reply streams an AI answer for draft.Content to out and returns the note
// to save. An empty answer keeps draft as it is.
func (a *app) reply(ctx context.Context, out io.Writer, draft api.NoteRequest) (api.NoteRequest, error) {
	r := a.requester(out)
	fmt.Fprintf(out, "[%s] ", a.styles.CurrentStyleName())
	_, err := r.Request(ctx, draft.Content)
	fmt.Fprintln(out)
	if err != nil {
		return draft, err
	}

	saved, err := r.Save(draft.Content)
	if errors.Is(err, completion.ErrNoResult) {
		return draft, nil
	}
	return saved, err
}
