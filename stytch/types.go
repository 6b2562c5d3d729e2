package stytch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ResponseMeta is embedded in every response body
type ResponseMeta struct {
	StatusCode int    `json:"status_code"`
	RequestID  string `json:"request_id"`
}

// RequiredFields lists the keys every response carries
func (ResponseMeta) RequiredFields() []string {
	return []string{"status_code", "request_id"}
}

// SessionFields are the keys a session object must carry, relative to the session
var SessionFields = []string{
	"session_id", "user_id", "authentication_factors",
	"started_at", "expires_at", "last_accessed_at", "attributes",
}

// FieldRequirer is implemented by bodies that must carry certain keys.
// Nested keys are dotted, e.g. "session.session_id".
type FieldRequirer interface {
	RequiredFields() []string
}

// CheckRequired verifies that data carries every key out requires. A key
// holding null counts as missing. Values that do not implement FieldRequirer
// always pass.
func CheckRequired(data []byte, out any) error {
	r, ok := out.(FieldRequirer)
	if !ok {
		return nil
	}

	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("body is not an object: %w", err)
	}
	if root == nil {
		return errors.New("body is null")
	}

	var missing []string
	for _, path := range r.RequiredFields() {
		if !hasPath(root, strings.Split(path, ".")) {
			missing = append(missing, path)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

func hasPath(obj map[string]json.RawMessage, keys []string) bool {
	raw, ok := obj[keys[0]]
	if !ok || isNull(raw) {
		return false
	}
	if len(keys) == 1 {
		return true
	}
	var inner map[string]json.RawMessage
	if err := json.Unmarshal(raw, &inner); err != nil || inner == nil {
		return false
	}
	return hasPath(inner, keys[1:])
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// User is not modeled yet; it round-trips as an empty object.
type User struct{}

// Attributes describes the client that started a session
type Attributes struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
}

// Session is an authenticated session as returned by the service
type Session struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`

	AuthenticationFactors []AuthenticationFactor `json:"authentication_factors"`

	StartedAt      time.Time `json:"started_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`

	Attributes Attributes `json:"attributes"`
}

// Active reports whether the session has not expired at now
func (s *Session) Active(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

// Validate checks the ordering the service guarantees for its timestamps.
// Decoding never calls it.
func (s *Session) Validate() error {
	var errs []error
	if s.LastAccessedAt.Before(s.StartedAt) {
		errs = append(errs, fmt.Errorf("last_accessed_at %s is before started_at %s",
			s.LastAccessedAt.Format(time.RFC3339), s.StartedAt.Format(time.RFC3339)))
	}
	if !s.StartedAt.Before(s.ExpiresAt) {
		errs = append(errs, fmt.Errorf("expires_at %s is not after started_at %s",
			s.ExpiresAt.Format(time.RFC3339), s.StartedAt.Format(time.RFC3339)))
	}
	if len(s.AuthenticationFactors) == 0 {
		errs = append(errs, errors.New("session has no authentication factors"))
	}
	return errors.Join(errs...)
}

// FactorKeys returns the wire key of every factor in order, e.g. "email_factor"
func (s *Session) FactorKeys() []string {
	keys := make([]string, 0, len(s.AuthenticationFactors))
	for _, f := range s.AuthenticationFactors {
		if f.Factor != nil {
			keys = append(keys, f.Factor.FactorKey())
		}
	}
	return keys
}
