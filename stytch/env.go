package stytch

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Base URLs of the hosted environments
const (
	LiveURL = "https://api.stytch.com/v1/"
	TestURL = "https://test.stytch.com/v1/"
)

type envKind int

const (
	envLive envKind = iota
	envTest
	envDev
)

// Environment selects which Stytch instance a client talks to.
// The zero value is Live.
type Environment struct {
	kind envKind
	raw  string
}

var (
	// Live is the production environment
	Live = Environment{kind: envLive}
	// Test is the sandbox environment
	Test = Environment{kind: envTest}
)

// Dev returns an environment pointing at an arbitrary, usually self-hosted, URL
func Dev(rawURL string) Environment {
	return Environment{kind: envDev, raw: rawURL}
}

// ParseEnvironment maps "live" and "test" (any case) to the hosted environments.
// Every other value is kept as a Dev URL.
func ParseEnvironment(s string) Environment {
	switch {
	case strings.EqualFold(s, "live"):
		return Live
	case strings.EqualFold(s, "test"):
		return Test
	default:
		return Dev(s)
	}
}

// IsDev reports whether e points at a caller supplied URL
func (e Environment) IsDev() bool {
	return e.kind == envDev
}

// String returns the token ParseEnvironment would map back to e
func (e Environment) String() string {
	switch e.kind {
	case envTest:
		return "test"
	case envDev:
		return e.raw
	default:
		return "live"
	}
}

// BaseURL resolves the environment to an absolute URL ending in "/", so that
// relative endpoint paths keep the last segment of the base path.
func (e Environment) BaseURL() (*url.URL, error) {
	var raw string
	switch e.kind {
	case envLive:
		raw = LiveURL
	case envTest:
		raw = TestURL
	default:
		raw = e.raw
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, newError(KindInvalidURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, newError(KindInvalidURL, fmt.Errorf("base URL %q is not absolute", e.raw))
	}
	return u, nil
}

// MarshalText implements encoding.TextMarshaler
func (e Environment) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (e *Environment) UnmarshalText(text []byte) error {
	*e = ParseEnvironment(string(text))
	return nil
}

// UnmarshalJSON accepts a JSON string
func (e *Environment) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("environment must be a string: %w", err)
	}
	*e = ParseEnvironment(s)
	return nil
}
