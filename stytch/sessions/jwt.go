package sessions

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/s0up4200/stytchctl/stytch"
)

// SessionClaim is the claim name Stytch stores the session under
const SessionClaim = "https://stytch.com/session"

// JWTClaims are the claims of a Stytch session JWT. The subject is the user ID.
type JWTClaims struct {
	jwt.RegisteredClaims

	Session JWTSession `json:"https://stytch.com/session"`
}

// JWTSession is the session snapshot embedded in a session JWT
type JWTSession struct {
	ID                    string                        `json:"id"`
	StartedAt             time.Time                     `json:"started_at"`
	LastAccessedAt        time.Time                     `json:"last_accessed_at"`
	ExpiresAt             time.Time                     `json:"expires_at"`
	Attributes            stytch.Attributes             `json:"attributes"`
	AuthenticationFactors []stytch.AuthenticationFactor `json:"authentication_factors"`
}

// InspectJWT decodes the claims of a session JWT without verifying its
// signature. Use Authenticate to check a JWT against the service.
func InspectJWT(token string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to parse session JWT: %w", err)
	}
	return claims, nil
}

// ToSession converts the snapshot to a Session
func (c *JWTClaims) ToSession() stytch.Session {
	return stytch.Session{
		SessionID:             c.Session.ID,
		UserID:                c.Subject,
		AuthenticationFactors: c.Session.AuthenticationFactors,
		StartedAt:             c.Session.StartedAt,
		ExpiresAt:             c.Session.ExpiresAt,
		LastAccessedAt:        c.Session.LastAccessedAt,
		Attributes:            c.Session.Attributes,
	}
}
