package client

import (
	"context"

	"echomemo/internal/api"
	"echomemo/internal/style"
)

func (c *Client) ListStyles(ctx context.Context) ([]style.Style, error) {
	req, cancel := c.request(ctx)
	defer cancel()

	var out []style.Style
	resp, err := req.SetResult(&out).Get("/api/ai-styles")
	if err := checkAuthed("list styles", resp, err); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateStyle(ctx context.Context, in api.StyleRequest) error {
	req, cancel := c.request(ctx)
	defer cancel()

	resp, err := req.SetBody(in).Post("/api/ai-styles")
	return checkAuthed("add style", resp, err)
}

func (c *Client) UpdateStyle(ctx context.Context, id string, in api.StyleRequest) error {
	req, cancel := c.request(ctx)
	defer cancel()

	resp, err := req.SetBody(in).SetPathParam("id", id).Put("/api/ai-styles/{id}")
	return checkAuthed("update style", resp, err)
}

func (c *Client) DeleteStyle(ctx context.Context, id string) error {
	req, cancel := c.request(ctx)
	defer cancel()

	resp, err := req.SetPathParam("id", id).Delete("/api/ai-styles/{id}")
	return checkAuthed("delete style", resp, err)
}
