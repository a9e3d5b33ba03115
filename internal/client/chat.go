package client

import (
	"context"
	"io"
	"net/http"

	"echomemo/internal/api"
)

// StreamCompletion opens POST /api/chat and returns the plain-text token
// stream. Closing the reader ends the request.
func (c *Client) StreamCompletion(ctx context.Context, system, prompt string) (io.ReadCloser, error) {
	ctx, cancel := context.WithTimeout(ctx, streamTimeout)

	resp, err := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetHeader("Accept", "text/plain").
		SetBody(api.ChatRequest{System: system, Prompt: prompt}).
		Post("/api/chat")
	if err != nil {
		cancel()
		return nil, err
	}

	body := resp.RawBody()
	if !resp.IsSuccess() {
		defer body.Close()
		defer cancel()
		b, _ := io.ReadAll(io.LimitReader(body, 4096))
		if resp.StatusCode() == http.StatusUnauthorized {
			return nil, ErrSessionExpired
		}
		return nil, &APIError{Status: resp.StatusCode(), Message: errorMessage(resp.StatusCode(), b), Op: "completion"}
	}
	return &cancelReader{ReadCloser: body, cancel: cancel}, nil
}

type cancelReader struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (r *cancelReader) Close() error {
	err := r.ReadCloser.Close()
	r.cancel()
	return err
}
