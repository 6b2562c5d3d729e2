package magiclinks

import (
	"context"

	"github.com/s0up4200/stytchctl/stytch"
)

// API defines the magic link operations
type API interface {
	// SendEmail emails a magic link to req.Email
	SendEmail(ctx context.Context, req SendRequest) (*SendResponse, error)

	// Authenticate exchanges a magic link token
	Authenticate(ctx context.Context, req AuthenticateRequest) (*AuthenticateResponse, error)
}

// Client implements API on top of a Sender
type Client struct {
	sender stytch.Sender
}

// NewClient creates a magic link client
func NewClient(sender stytch.Sender) *Client {
	return &Client{sender: sender}
}

// SendEmail emails a magic link to req.Email
func (c *Client) SendEmail(ctx context.Context, req SendRequest) (*SendResponse, error) {
	return stytch.Send[SendResponse](ctx, c.sender, req.Build())
}

// Authenticate exchanges a magic link token
func (c *Client) Authenticate(ctx context.Context, req AuthenticateRequest) (*AuthenticateResponse, error) {
	return stytch.Send[AuthenticateResponse](ctx, c.sender, req.Build())
}

var _ API = (*Client)(nil)
