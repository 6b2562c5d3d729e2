// Package stytch provides the protocol layer of a typed client for the Stytch
// authentication API.
//
// # Architecture
//
// The package is organized into several components:
//
//   - Environment: resolves Live, Test or a Dev URL to a base URL ending in "/"
//   - Types: Session, AuthenticationFactor, Factor and the other shared models
//   - Request: a body bound to the method and path of its endpoint
//   - Sender: the transport contract, implemented by package transport
//   - Errors: one Error type classifying every failure
//
// Endpoint shapes live in the magiclinks, sessions and users sub-packages.
//
// # Usage
//
//	base, err := stytch.Test.BaseURL()
//	if err != nil {
//		log.Fatal(err)
//	}
//	client, err := transport.NewClient(transport.Config{
//		BaseURL:   base,
//		ProjectID: "project-test-...",
//		Secret:    "secret-test-...",
//	}, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	req := sessions.AuthenticateRequest{SessionToken: stytch.String(token)}
//	resp, err := stytch.Send[sessions.AuthenticateResponse](ctx, client, req.Build())
//
// # Error Handling
//
// Every request fails with *Error. Its Kind tells the failures apart:
//
//   - KindResponse: the service rejected the request, see Error.Response
//   - KindInvalidHeaderValue: the credentials cannot be sent as a header
//   - KindInvalidURL: the base URL is unusable
//   - KindOther: network failures and undecodable bodies
//
// Application errors can be reached with AsResponse:
//
//	if resp, ok := stytch.AsResponse(err); ok && resp.IsUnauthorized() {
//		// Handle auth failure
//	}
package stytch
