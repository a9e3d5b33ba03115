package client

import (
	"context"
	"errors"

	"echomemo/internal/api"
	"echomemo/internal/validation"
)

func (c *Client) Register(ctx context.Context, in api.RegisterRequest) (string, error) {
	if err := validation.Struct(in); err != nil {
		return "", err
	}
	req, cancel := c.request(ctx)
	defer cancel()

	var out api.StatusResponse
	resp, err := req.SetBody(in).SetResult(&out).Post("/api/auth/register")
	if err := check("register", resp, err); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Login returns the access token.
func (c *Client) Login(ctx context.Context, in api.LoginRequest) (string, error) {
	if err := validation.Struct(in); err != nil {
		return "", err
	}
	req, cancel := c.request(ctx)
	defer cancel()

	var out api.TokenResponse
	resp, err := req.SetBody(in).SetResult(&out).Post("/api/auth/login")
	if err := check("login", resp, err); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", errors.New("login: empty access token")
	}
	return out.AccessToken, nil
}

func (c *Client) ResetPassword(ctx context.Context, in api.ResetPasswordRequest) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	req, cancel := c.request(ctx)
	defer cancel()

	resp, err := req.SetBody(in).Post("/api/auth/reset-password")
	return check("reset password", resp, err)
}
