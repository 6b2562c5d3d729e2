package stytch

import "context"

// Sender performs one HTTP exchange with the service.
//
// Do encodes body as JSON, sends it with method to path resolved against the
// configured base URL and decodes a 2xx body into out. Failures are returned as
// *Error. Implementations must be safe for concurrent use and must not retry.
type Sender interface {
	Do(ctx context.Context, method, path string, body, out any) error
}

// Send dispatches a typed request and decodes the typed response
func Send[Res, Req any](ctx context.Context, s Sender, req Request[Req]) (*Res, error) {
	var res Res
	if err := s.Do(ctx, req.Method, req.Path, req.Body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SenderFunc adapts a function to the Sender interface
type SenderFunc func(ctx context.Context, method, path string, body, out any) error

// Do calls f
func (f SenderFunc) Do(ctx context.Context, method, path string, body, out any) error {
	return f(ctx, method, path, body, out)
}
