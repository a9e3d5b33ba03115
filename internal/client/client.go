// Package client talks to the EchoMemo REST API: notes, auth, custom
// styles and the streaming completion proxy.
package client

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const (
	defaultRequestTimeout = 15 * time.Second
	// a little above the server's 60s completion deadline
	streamTimeout = 65 * time.Second
)

type Client struct {
	http           *resty.Client
	log            zerolog.Logger
	requestTimeout time.Duration
}

type Option func(*Client)

func WithToken(token string) Option {
	return func(c *Client) {
		if token != "" {
			c.http.SetAuthToken(token)
		}
	}
}

// WithHTTPClient swaps the transport, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		base := c.http.BaseURL
		token := c.http.Token
		c.http = newResty(resty.NewWithClient(hc), base)
		if token != "" {
			c.http.SetAuthToken(token)
		}
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) { c.requestTimeout = d }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http:           newResty(resty.New(), strings.TrimRight(baseURL, "/")),
		log:            zerolog.Nop(),
		requestTimeout: defaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newResty(r *resty.Client, baseURL string) *resty.Client {
	return r.
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
}

// SetToken replaces the bearer token used for authenticated calls.
func (c *Client) SetToken(token string) {
	c.http.SetAuthToken(token)
}

func (c *Client) request(ctx context.Context) (*resty.Request, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	return c.http.R().SetContext(ctx), cancel
}
