package stytch

// Request is a request body bound to the method and path of its endpoint.
// Values are created by the Build method of each request type.
type Request[B any] struct {
	Method string
	Path   string
	Body   B
}

// NewRequest binds body to an endpoint. Paths are relative to the base URL and
// must not start with "/".
func NewRequest[B any](method, path string, body B) Request[B] {
	return Request[B]{
		Method: method,
		Path:   path,
		Body:   body,
	}
}
