// Package users models user provisioning.
package users

import (
	"context"
	"fmt"
	"net/http"

	"github.com/s0up4200/stytchctl/stytch"
)

// CreatePath is the route of the create endpoint
const CreatePath = "users"

// Name of a user, every part optional
type Name struct {
	FirstName  *string `json:"first_name,omitempty"`
	MiddleName *string `json:"middle_name,omitempty"`
	LastName   *string `json:"last_name,omitempty"`
}

// Status of a user account
type Status string

const (
	StatusActive  Status = "active"
	StatusPending Status = "pending"
)

// UnmarshalText rejects statuses this client does not know
func (s *Status) UnmarshalText(text []byte) error {
	switch Status(text) {
	case StatusActive, StatusPending:
		*s = Status(text)
		return nil
	default:
		return fmt.Errorf("unknown user status %q", string(text))
	}
}

// CreateRequest creates a user identified by email and/or phone number
type CreateRequest struct {
	Email               *string            `json:"email,omitempty"`
	PhoneNumber         *string            `json:"phone_number,omitempty"`
	Name                *Name              `json:"name,omitempty"`
	CreateUserAsPending *bool              `json:"create_user_as_pending,omitempty"`
	Attributes          *stytch.Attributes `json:"attributes,omitempty"`
}

// CreateResponse is returned with status 201 for a new user
type CreateResponse struct {
	stytch.ResponseMeta

	UserID  string      `json:"user_id"`
	User    stytch.User `json:"user"`
	EmailID string      `json:"email_id"`
	Status  Status      `json:"status"`
}

// RequiredFields lists the keys the body must carry
func (CreateResponse) RequiredFields() []string {
	return append(stytch.ResponseMeta{}.RequiredFields(), "user_id", "user", "email_id", "status")
}

// Build binds the request to POST users
func (r CreateRequest) Build() stytch.Request[CreateRequest] {
	return stytch.NewRequest(http.MethodPost, CreatePath, r)
}

// API defines the user operations
type API interface {
	// Create provisions a new user
	Create(ctx context.Context, req CreateRequest) (*CreateResponse, error)
}

// Client implements API on top of a Sender
type Client struct {
	sender stytch.Sender
}

// NewClient creates a users client
func NewClient(sender stytch.Sender) *Client {
	return &Client{sender: sender}
}

// Create provisions a new user
func (c *Client) Create(ctx context.Context, req CreateRequest) (*CreateResponse, error) {
	return stytch.Send[CreateResponse](ctx, c.sender, req.Build())
}

var _ API = (*Client)(nil)
