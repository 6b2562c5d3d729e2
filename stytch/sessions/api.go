package sessions

import (
	"context"

	"github.com/s0up4200/stytchctl/stytch"
)

// API defines the session operations
type API interface {
	// Authenticate checks a session token or JWT
	Authenticate(ctx context.Context, req AuthenticateRequest) (*AuthenticateResponse, error)

	// Revoke ends a session
	Revoke(ctx context.Context, req RevokeRequest) (*RevokeResponse, error)
}

// Client implements API on top of a Sender
type Client struct {
	sender stytch.Sender
}

// NewClient creates a sessions client
func NewClient(sender stytch.Sender) *Client {
	return &Client{sender: sender}
}

// Authenticate checks a session token or JWT
func (c *Client) Authenticate(ctx context.Context, req AuthenticateRequest) (*AuthenticateResponse, error) {
	return stytch.Send[AuthenticateResponse](ctx, c.sender, req.Build())
}

// Revoke ends a session
func (c *Client) Revoke(ctx context.Context, req RevokeRequest) (*RevokeResponse, error) {
	return stytch.Send[RevokeResponse](ctx, c.sender, req.Build())
}

var _ API = (*Client)(nil)
