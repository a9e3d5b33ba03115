package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// ErrSessionExpired reports a 401 from an authenticated call; the caller
// must drop its token and log in again.
var ErrSessionExpired = errors.New("session expired, please log in again")

// APIError is a non-2xx answer other than 401 on authenticated calls.
type APIError struct {
	Status  int
	Message string
	Op      string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s (HTTP %d)", e.Op, e.Message, e.Status)
}

func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// checkAuthed maps a response from an authenticated endpoint.
func checkAuthed(op string, resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		return ErrSessionExpired
	}
	return check(op, resp, nil)
}

func check(op string, resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if resp.IsSuccess() {
		return nil
	}
	return &APIError{Status: resp.StatusCode(), Message: errorMessage(resp.StatusCode(), resp.Body()), Op: op}
}

func errorMessage(status int, body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if json.Unmarshal(body, &payload) == nil {
		for _, m := range []string{payload.Error, payload.Message, payload.Detail} {
			if m != "" {
				return m
			}
		}
	}
	if msg := strings.TrimSpace(string(body)); msg != "" && len(msg) <= 200 {
		return msg
	}
	return fmt.Sprintf("request failed with status %d", status)
}
