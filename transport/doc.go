// Package transport provides the HTTP implementation of stytch.Sender.
//
// The Client authenticates every call with HTTP Basic credentials built from
// the project ID and secret, resolves endpoint paths against the configured
// base URL and classifies failures into *stytch.Error values. It performs no
// retries and keeps no state between calls apart from optional metrics.
//
// # Usage
//
//	cfg, err := transport.NewConfig(stytch.Test, projectID, secret)
//	if err != nil {
//		log.Fatal(err)
//	}
//	client, err := transport.NewClient(cfg, logger,
//		transport.WithTimeout(10*time.Second),
//		transport.WithTracing(),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	resp, err := users.NewClient(client).Create(ctx, users.CreateRequest{
//		Email: stytch.String("sandbox@stytch.com"),
//	})
//
// # Options
//
//   - WithHTTPClient: bring your own *http.Client
//   - WithTimeout: timeout of the default *http.Client (30s)
//   - WithUserAgent: override the User-Agent header
//   - WithTracing: OpenTelemetry spans for every request
//   - WithMetrics: Prometheus request counters and latency histograms
package transport
