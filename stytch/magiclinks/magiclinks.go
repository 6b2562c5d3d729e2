// Package magiclinks models the passwordless magic link endpoints.
package magiclinks

import (
	"net/http"

	"github.com/s0up4200/stytchctl/stytch"
)

// Routes of the magic link endpoints
const (
	AuthenticatePath = "magic_links/authenticate"
	SendEmailPath    = "magic_links/email/send"
)

// AuthenticateRequest exchanges a magic link token for a user and, optionally, a session
type AuthenticateRequest struct {
	Token                  string  `json:"token"`
	SessionDurationMinutes *int    `json:"session_duration_minutes,omitempty"`
	SessionToken           *string `json:"session_token,omitempty"`
	SessionJWT             *string `json:"session_jwt,omitempty"`
}

// AuthenticateResponse is returned by a successful magic link authentication
type AuthenticateResponse struct {
	stytch.ResponseMeta

	UserID       string          `json:"user_id"`
	User         stytch.User     `json:"user"`
	Session      *stytch.Session `json:"session"`
	SessionToken string          `json:"session_token"`
	SessionJWT   string          `json:"session_jwt"`
}

// RequiredFields lists the keys the body must carry; session may be absent
func (AuthenticateResponse) RequiredFields() []string {
	return append(stytch.ResponseMeta{}.RequiredFields(), "user_id", "user", "session_token", "session_jwt")
}

// Build binds the request to POST magic_links/authenticate
func (r AuthenticateRequest) Build() stytch.Request[AuthenticateRequest] {
	return stytch.NewRequest(http.MethodPost, AuthenticatePath, r)
}

// SendRequest emails a login or signup magic link
type SendRequest struct {
	Email                   string  `json:"email"`
	LoginMagicLinkURL       *string `json:"login_magic_link_url,omitempty"`
	SignupMagicLinkURL      *string `json:"signup_magic_link_url,omitempty"`
	LoginExpirationMinutes  *int    `json:"login_expiration_minutes,omitempty"`
	SignupExpirationMinutes *int    `json:"signup_expiration_minutes,omitempty"`
}

// SendResponse is returned once the email has been queued
type SendResponse struct {
	stytch.ResponseMeta

	UserID  string `json:"user_id"`
	EmailID string `json:"email_id"`
}

// RequiredFields lists the keys the body must carry
func (SendResponse) RequiredFields() []string {
	return append(stytch.ResponseMeta{}.RequiredFields(), "user_id", "email_id")
}

// Build binds the request to POST magic_links/email/send
func (r SendRequest) Build() stytch.Request[SendRequest] {
	return stytch.NewRequest(http.MethodPost, SendEmailPath, r)
}
