// Package completion drives one AI reply for a note draft: it composes the
// system prompt from the selected style and streams the answer.
package completion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"echomemo/internal/api"
	"echomemo/internal/style"

	"github.com/rs/zerolog"
)

// StyleConstraints is appended to every style prompt.
const StyleConstraints = "直接回复文本，不要包含任何解释，不要用markdown，也不要过长，100字以内"

var (
	ErrEmptyContent = errors.New("content is empty")
	// ErrReplaced is returned to a request that a newer one cancelled.
	ErrReplaced = errors.New("completion replaced by a newer request")
	ErrNoResult = errors.New("no completion to save")
)

type State int

const (
	Idle State = iota
	Submitting
	Streaming
	ResultShown
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Streaming:
		return "streaming"
	case ResultShown:
		return "result-shown"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// StyleSource yields the style selected at request time.
type StyleSource interface {
	Current(ctx context.Context) style.Style
}

type Streamer interface {
	StreamCompletion(ctx context.Context, system, prompt string) (io.ReadCloser, error)
}

type Requester struct {
	styles  StyleSource
	stream  Streamer
	log     zerolog.Logger
	onChunk func(string)

	mu     sync.Mutex
	state  State
	out    strings.Builder
	style  style.Style
	seq    uint64
	cancel context.CancelFunc
}

type Option func(*Requester)

func WithLogger(log zerolog.Logger) Option {
	return func(r *Requester) { r.log = log }
}

// OnChunk is called with each piece of text as it arrives.
func OnChunk(fn func(string)) Option {
	return func(r *Requester) { r.onChunk = fn }
}

func NewRequester(styles StyleSource, stream Streamer, opts ...Option) *Requester {
	r := &Requester{styles: styles, stream: stream, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func SystemPrompt(s style.Style) string {
	return s.Prompt + StyleConstraints
}

// Request streams a reply to content and returns the full text. A request
// already in flight is cancelled and gets ErrReplaced.
func (r *Requester) Request(ctx context.Context, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyContent
	}

	st := r.styles.Current(ctx)

	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.seq++
	seq := r.seq
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.state = Submitting
	r.out.Reset()
	r.style = st
	r.mu.Unlock()
	defer cancel()

	r.log.Debug().Str("style", st.Name).Msg("completion requested")

	body, err := r.stream.StreamCompletion(ctx, SystemPrompt(st), content)
	if err != nil {
		return "", r.fail(seq, err)
	}
	defer body.Close()

	emit := func(chunk string) bool {
		r.mu.Lock()
		if r.seq != seq {
			r.mu.Unlock()
			return false
		}
		r.out.WriteString(chunk)
		r.state = Streaming
		r.mu.Unlock()
		if r.onChunk != nil {
			r.onChunk(chunk)
		}
		return true
	}

	buf := make([]byte, 4096)
	// bytes of a rune split across reads
	var pending []byte
	for {
		n, rerr := body.Read(buf)
		if n > 0 {
			data := append(pending, buf[:n]...)
			cut := completeRunes(data)
			pending = append([]byte(nil), data[cut:]...)
			if cut > 0 && !emit(string(data[:cut])) {
				return "", ErrReplaced
			}
		}
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return "", r.fail(seq, rerr)
		}
	}
	if len(pending) > 0 && !emit(string(pending)) {
		return "", ErrReplaced
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seq != seq {
		return "", ErrReplaced
	}
	r.cancel = nil
	if r.out.Len() == 0 {
		r.state = Idle
		return "", nil
	}
	r.state = ResultShown
	return r.out.String(), nil
}

// completeRunes returns the length of the prefix of p that does not end in
// a truncated UTF-8 sequence.
func completeRunes(p []byte) int {
	for i := len(p) - 1; i >= 0 && i >= len(p)-utf8.UTFMax; i-- {
		if utf8.RuneStart(p[i]) {
			if utf8.FullRune(p[i:]) {
				return len(p)
			}
			return i
		}
	}
	return len(p)
}

// Retry re-issues the request, possibly with edited content.
func (r *Requester) Retry(ctx context.Context, content string) (string, error) {
	return r.Request(ctx, content)
}

func (r *Requester) fail(seq uint64, err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seq != seq {
		return ErrReplaced
	}
	r.state = Idle
	r.out.Reset()
	r.cancel = nil
	r.log.Error().Err(err).Msg("completion failed")
	return err
}

// Reset discards any result and cancels a request in flight.
func (r *Requester) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.seq++
	r.state = Idle
	r.out.Reset()
}

// Save turns the shown result into a note body and returns to Idle.
func (r *Requester) Save(content string) (api.NoteRequest, error) {
	r.mu.Lock()
	if r.state != Streaming && r.state != ResultShown {
		r.mu.Unlock()
		return api.NoteRequest{}, ErrNoResult
	}
	name := r.style.Name
	if name == "" {
		name = style.Default().Name
	}
	req := api.NoteRequest{Content: content, AIResponse: r.out.String(), AIStyle: name}
	r.mu.Unlock()

	r.Reset()
	return req, nil
}

func (r *Requester) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Requester) Output() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.out.String()
}

// Style is the style used by the latest request.
func (r *Requester) Style() style.Style {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.style
}
