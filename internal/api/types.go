// Package api holds the JSON request and response shapes shared by the
// server handlers and the client.
package api

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required,min=2"`
	Password string `json:"password" validate:"required,min=6"`
}

type ResetPasswordRequest struct {
	Username    string `json:"username" validate:"required,min=2"`
	Email       string `json:"email" validate:"required,email"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

type SetCookieRequest struct {
	Token string `json:"token" validate:"required"`
}

type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

type NoteRequest struct {
	Content    string `json:"content" validate:"required"`
	AIResponse string `json:"ai_response"`
	AIStyle    string `json:"ai_style"`
}

type StyleRequest struct {
	Name        string `json:"name" validate:"required,min=2"`
	Description string `json:"description" validate:"required,min=2"`
	Prompt      string `json:"prompt" validate:"required,min=2"`
	Color       string `json:"color,omitempty"`
}

// ChatRequest is the body of POST /api/chat. Message is the older field
// layout: when it is set, Prompt carries the system text and Message the
// user text.
type ChatRequest struct {
	System  string `json:"system,omitempty"`
	Prompt  string `json:"prompt"`
	Message string `json:"message,omitempty"`
}

// Split returns the system instruction and user message.
func (r ChatRequest) Split() (system, user string) {
	if r.Message != "" {
		return r.Prompt, r.Message
	}
	return r.System, r.Prompt
}

type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}
