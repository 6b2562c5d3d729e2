// Package sessions models the session lifecycle endpoints.
package sessions

import (
	"net/http"

	"github.com/s0up4200/stytchctl/stytch"
)

// Routes of the session endpoints
const (
	AuthenticatePath = "sessions/authenticate"
	RevokePath       = "sessions/revoke"
)

// AuthenticateRequest checks a session token or JWT and optionally extends it
type AuthenticateRequest struct {
	SessionDurationMinutes *int    `json:"session_duration_minutes,omitempty"`
	SessionToken           *string `json:"session_token,omitempty"`
	SessionJWT             *string `json:"session_jwt,omitempty"`
}

// AuthenticateResponse carries the authenticated session.
// SessionToken is absent when the request authenticated with a JWT.
type AuthenticateResponse struct {
	stytch.ResponseMeta

	Session      stytch.Session        `json:"session"`
	SessionToken stytch.OptionalString `json:"session_token"`
	SessionJWT   string                `json:"session_jwt"`
}

// RequiredFields lists the keys the body must carry, including those of the
// session. session_token may be absent.
func (AuthenticateResponse) RequiredFields() []string {
	fields := append(stytch.ResponseMeta{}.RequiredFields(), "session", "session_jwt")
	for _, f := range stytch.SessionFields {
		fields = append(fields, "session."+f)
	}
	return fields
}

// Build binds the request to POST sessions/authenticate
func (r AuthenticateRequest) Build() stytch.Request[AuthenticateRequest] {
	return stytch.NewRequest(http.MethodPost, AuthenticatePath, r)
}

// RevokeRequest revokes a session identified by exactly one of its fields
type RevokeRequest struct {
	SessionID    *string `json:"session_id,omitempty"`
	SessionToken *string `json:"session_token,omitempty"`
	SessionJWT   *string `json:"session_jwt,omitempty"`
}

// RevokeResponse has no payload beyond the response metadata
type RevokeResponse struct {
	stytch.ResponseMeta
}

// Build binds the request to POST sessions/revoke
func (r RevokeRequest) Build() stytch.Request[RevokeRequest] {
	return stytch.NewRequest(http.MethodPost, RevokePath, r)
}
