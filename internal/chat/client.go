// Package chat talks to an OpenAI-compatible chat completions backend and
// relays the streamed reply as plain text.
package chat

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

var ErrNotConfigured = errors.New("API key or URL is not set")

// UpstreamError is a non-2xx answer from the completions backend.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Body)
}

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

type Client struct {
	cfg  Config
	http *resty.Client
	log  zerolog.Logger
}

func New(cfg Config, log zerolog.Logger) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:  cfg,
		http: resty.New().SetBaseURL(cfg.BaseURL),
		log:  log,
	}
}

func (c *Client) Configured() bool {
	return c.cfg.APIKey != "" && c.cfg.BaseURL != ""
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model    string    `json:"model"`
	Stream   bool      `json:"stream"`
	Messages []message `json:"messages"`
}

// Stream sends system and user as a two-turn conversation and calls emit
// for every content delta, in order. It returns when the backend sends
// [DONE], closes the stream, or ctx ends.
func (c *Client) Stream(ctx context.Context, system, user string, emit func(string) error) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	msgs := make([]message, 0, 2)
	if system != "" {
		msgs = append(msgs, message{Role: "system", Content: system})
	}
	msgs = append(msgs, message{Role: "user", Content: user})

	resp, err := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetAuthToken(c.cfg.APIKey).
		SetHeader("Accept", "text/event-stream").
		SetBody(completionRequest{Model: c.cfg.Model, Stream: true, Messages: msgs}).
		Post("/chat/completions")
	if err != nil {
		return fmt.Errorf("chat completions: %w", err)
	}

	body := resp.RawBody()
	defer body.Close()

	if !resp.IsSuccess() {
		b, _ := io.ReadAll(io.LimitReader(body, 2048))
		return &UpstreamError{Status: resp.StatusCode(), Body: strings.TrimSpace(string(b))}
	}
	return c.decode(body, emit)
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) decode(r io.Reader, emit func(string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(line[len("data:"):])
		if payload == "" {
			continue
		}
		if payload == "[DONE]" {
			return nil
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			c.log.Warn().Err(err).Str("payload", payload).Msg("skip malformed stream frame")
			continue
		}
		if chunk.Error != nil {
			return fmt.Errorf("upstream stream error: %s", chunk.Error.Message)
		}
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}
		if err := emit(chunk.Choices[0].Delta.Content); err != nil {
			return err
		}
	}
	return scanner.Err()
}
