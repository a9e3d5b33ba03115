package notesview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"echomemo/internal/api"
	"echomemo/internal/client"

	"github.com/rs/zerolog"
)

const SearchDebounce = 500 * time.Millisecond

// NotesAPI is the subset of the notes client the controller drives.
type NotesAPI interface {
	ListNotes(ctx context.Context) ([]client.Note, error)
	SearchNotes(ctx context.Context, keyword string) ([]client.Note, error)
	CreateNote(ctx context.Context, in api.NoteRequest) (client.Note, error)
	UpdateNote(ctx context.Context, id string, in api.NoteRequest) (client.Note, error)
	DeleteNote(ctx context.Context, id string) error
}

// View is a snapshot of what is on screen.
type View struct {
	Notes        []client.Note
	Base         []client.Note
	Keyword      string
	SearchActive bool
	SelectedDate string
}

type Controller struct {
	api      NotesAPI
	log      zerolog.Logger
	debounce *Debouncer

	onChange func(View)
	onError  func(error)

	mu      sync.Mutex
	engine  *Engine
	keyword string
}

type ControllerOption func(*Controller)

func WithDebounce(d time.Duration) ControllerOption {
	return func(c *Controller) { c.debounce = NewDebouncer(d) }
}

func WithLogger(log zerolog.Logger) ControllerOption {
	return func(c *Controller) { c.log = log }
}

// OnChange registers a callback invoked after every state change.
func OnChange(fn func(View)) ControllerOption {
	return func(c *Controller) { c.onChange = fn }
}

// OnError receives failures of debounced searches, which have no caller to return to.
func OnError(fn func(error)) ControllerOption {
	return func(c *Controller) { c.onError = fn }
}

func NewController(notes NotesAPI, opts ...ControllerOption) *Controller {
	c := &Controller{
		api:      notes,
		log:      zerolog.Nop(),
		debounce: NewDebouncer(SearchDebounce),
	}
	for _, opt := range opts {
		opt(c)
	}
	// notes arrive already shifted to display time
	c.engine = NewEngine(time.UTC)
	return c
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Controller) Displayed() []client.Note {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Displayed()
}

func (c *Controller) viewLocked() View {
	_, searching := c.engine.SearchResults()
	return View{
		Notes:        c.engine.Displayed(),
		Base:         c.engine.Base(),
		Keyword:      c.keyword,
		SearchActive: searching,
		SelectedDate: c.engine.SelectedDate(),
	}
}

func (c *Controller) notify() {
	if c.onChange == nil {
		return
	}
	c.onChange(c.View())
}

// Refresh refetches the base list and recomputes search and date filters
// against it. When only the search re-run fails, the view is still pruned to
// the new base and the search error is returned.
func (c *Controller) Refresh(ctx context.Context) error {
	base, err := c.api.ListNotes(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.engine.SetBase(base)
	kw := c.keyword
	if kw == "" {
		if date := c.engine.SelectedDate(); date != "" {
			c.engine.OnDateSelect(date, base)
		}
	}
	c.mu.Unlock()

	var searchErr error
	if kw != "" {
		results, err := c.api.SearchNotes(ctx, kw)
		if err != nil {
			if errors.Is(err, client.ErrSessionExpired) {
				return err
			}
			c.log.Warn().Err(err).Str("keyword", kw).Msg("refresh search results failed")
			searchErr = fmt.Errorf("search %q: %w", kw, err)
		}

		c.mu.Lock()
		if c.keyword == kw {
			if err != nil {
				// keep the old results but drop notes that left the base list
				prev, _ := c.engine.SearchResults()
				results = retain(prev, base)
			}
			c.engine.OnSearch(results)
		}
		c.mu.Unlock()
	}

	c.notify()
	return searchErr
}

// retain returns the notes of results still present in base, using the
// base copy of each. The result is never nil.
func retain(results, base []client.Note) []client.Note {
	byID := make(map[string]client.Note, len(base))
	for _, n := range base {
		byID[n.ID] = n
	}
	out := make([]client.Note, 0, len(results))
	for _, n := range results {
		if fresh, ok := byID[n.ID]; ok {
			out = append(out, fresh)
		}
	}
	return out
}

// Search runs a keyword search now. A blank keyword clears the search.
func (c *Controller) Search(ctx context.Context, keyword string) error {
	c.debounce.Cancel()

	kw := strings.TrimSpace(keyword)
	if kw == "" {
		c.clearSearch()
		return nil
	}

	results, err := c.api.SearchNotes(ctx, kw)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.keyword = kw
	c.engine.OnSearch(results)
	c.mu.Unlock()

	c.notify()
	return nil
}

// Type feeds one keystroke's worth of keyword. Searches run after the
// debounce window; results of superseded searches are dropped.
func (c *Controller) Type(ctx context.Context, keyword string) {
	kw := strings.TrimSpace(keyword)
	if kw == "" {
		c.debounce.Cancel()
		c.clearSearch()
		return
	}

	c.debounce.Trigger(ctx, func(ctx context.Context, gen uint64) {
		results, err := c.api.SearchNotes(ctx, kw)

		c.mu.Lock()
		if !c.debounce.Current(gen) {
			c.mu.Unlock()
			return
		}
		if err != nil {
			c.mu.Unlock()
			c.log.Warn().Err(err).Str("keyword", kw).Msg("search failed")
			if c.onError != nil {
				c.onError(err)
			}
			return
		}
		c.keyword = kw
		c.engine.OnSearch(results)
		c.mu.Unlock()

		c.notify()
	})
}

func (c *Controller) clearSearch() {
	c.mu.Lock()
	c.keyword = ""
	c.engine.OnSearch(nil)
	c.mu.Unlock()
	c.notify()
}

// SelectDate applies a day filter; selecting the active day again removes it.
func (c *Controller) SelectDate(date string) error {
	if date != "" {
		if _, err := time.Parse(DateLayout, date); err != nil {
			return fmt.Errorf("date %q: want YYYY-MM-DD", date)
		}
	}

	c.mu.Lock()
	if date != "" && date == c.engine.SelectedDate() {
		date = ""
	}
	c.engine.OnDateSelect(date, c.engine.Base())
	c.mu.Unlock()

	c.notify()
	return nil
}

func (c *Controller) ClearDate() {
	c.mu.Lock()
	c.engine.OnDateSelect("", c.engine.Base())
	c.mu.Unlock()
	c.notify()
}

// Add creates a note and reconciles the view. On failure nothing changes.
func (c *Controller) Add(ctx context.Context, in api.NoteRequest) (client.Note, error) {
	n, err := c.api.CreateNote(ctx, in)
	if err != nil {
		return client.Note{}, err
	}
	return n, c.reconcile(ctx, "add")
}

func (c *Controller) Update(ctx context.Context, id string, in api.NoteRequest) (client.Note, error) {
	n, err := c.api.UpdateNote(ctx, id, in)
	if err != nil {
		return client.Note{}, err
	}
	return n, c.reconcile(ctx, "update")
}

func (c *Controller) Delete(ctx context.Context, id string) error {
	if err := c.api.DeleteNote(ctx, id); err != nil {
		return err
	}
	return c.reconcile(ctx, "delete")
}

func (c *Controller) reconcile(ctx context.Context, op string) error {
	if err := c.Refresh(ctx); err != nil {
		if errors.Is(err, client.ErrSessionExpired) {
			return err
		}
		return fmt.Errorf("refresh after %s: %w", op, err)
	}
	return nil
}

// Close drops any pending debounced search and waits for one in flight.
// Type does nothing afterwards.
func (c *Controller) Close() {
	c.debounce.Stop()
}

// Find returns a note from the base list by id.
func (c *Controller) Find(id string) (client.Note, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range c.engine.Base() {
		if n.ID == id {
			return n, true
		}
	}
	return client.Note{}, false
}
