package transport

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/http/httpguts"

	"github.com/s0up4200/stytchctl/stytch"
)

// DefaultUserAgent is sent unless WithUserAgent overrides it
const DefaultUserAgent = "stytchctl"

// ClientRequestIDHeader carries a per-call ID for correlating client logs
const ClientRequestIDHeader = "X-Client-Request-Id"

// maxErrorBody bounds how much of an undecodable body ends up in an error
const maxErrorBody = 512

// Config holds what the transport needs to reach a project
type Config struct {
	BaseURL   *url.URL
	ProjectID string
	Secret    string
}

// NewConfig resolves env and bundles it with the project credentials
func NewConfig(env stytch.Environment, projectID, secret string) (Config, error) {
	base, err := env.BaseURL()
	if err != nil {
		return Config{}, err
	}
	return Config{BaseURL: base, ProjectID: projectID, Secret: secret}, nil
}

// MarshalZerologObject logs the config with the secret redacted
func (c Config) MarshalZerologObject(e *zerolog.Event) {
	if c.BaseURL != nil {
		e.Str("base_url", c.BaseURL.String())
	}
	e.Str("project_id", c.ProjectID)
	if c.Secret != "" {
		e.Str("secret", "[REDACTED]")
	}
}

// Client sends Stytch API requests over HTTP. It implements stytch.Sender and
// is safe for concurrent use.
type Client struct {
	baseURL       *url.URL
	authorization string
	userAgent     string
	httpClient    *http.Client
	logger        zerolog.Logger
	metrics       *collector
}

// NewClient creates a new Stytch HTTP client. Credentials that cannot form a
// valid Basic authorization header fail here with KindInvalidHeaderValue.
func NewClient(cfg Config, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if cfg.BaseURL == nil {
		return nil, stytch.NewInvalidURLError(errors.New("base URL is required"))
	}
	if !cfg.BaseURL.IsAbs() || cfg.BaseURL.Host == "" {
		return nil, stytch.NewInvalidURLError(fmt.Errorf("base URL %q is not absolute", cfg.BaseURL))
	}

	authorization, err := basicAuthorization(cfg.ProjectID, cfg.Secret)
	if err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if !httpguts.ValidHeaderFieldValue(o.userAgent) {
		return nil, stytch.NewInvalidHeaderError(fmt.Errorf("user agent %q is not a valid header value", o.userAgent))
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: o.timeout}
	}
	if o.tracing {
		traced := *httpClient
		base := traced.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		traced.Transport = otelhttp.NewTransport(base)
		httpClient = &traced
	}

	client := &Client{
		baseURL:       cfg.BaseURL,
		authorization: authorization,
		userAgent:     o.userAgent,
		httpClient:    httpClient,
		logger:        logger,
	}
	if o.registerer != nil {
		client.metrics = newCollector(o.registerer)
	}

	return client, nil
}

// basicAuthorization encodes project ID and secret as an HTTP Basic credential
func basicAuthorization(projectID, secret string) (string, error) {
	if strings.Contains(projectID, ":") {
		return "", stytch.NewInvalidHeaderError(errors.New("project ID must not contain ':'"))
	}
	if !httpguts.ValidHeaderFieldValue(projectID) {
		return "", stytch.NewInvalidHeaderError(errors.New("project ID contains invalid characters"))
	}
	if !httpguts.ValidHeaderFieldValue(secret) {
		return "", stytch.NewInvalidHeaderError(errors.New("secret contains invalid characters"))
	}

	value := "Basic " + base64.StdEncoding.EncodeToString([]byte(projectID+":"+secret))
	if !httpguts.ValidHeaderFieldValue(value) {
		return "", stytch.NewInvalidHeaderError(errors.New("authorization is not a valid header value"))
	}
	return value, nil
}

// BaseURL returns the URL endpoint paths are resolved against
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// Do implements stytch.Sender. It performs exactly one HTTP exchange.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return stytch.NewOtherError(fmt.Errorf("failed to encode request: %w", err))
	}

	ref, err := url.Parse(path)
	if err != nil {
		return stytch.NewInvalidURLError(fmt.Errorf("invalid path %q: %w", path, err))
	}
	endpoint := c.baseURL.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return stytch.NewOtherError(fmt.Errorf("failed to create request: %w", err))
	}

	clientRequestID := uuid.NewString()
	req.Header.Set("Authorization", c.authorization)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(ClientRequestIDHeader, clientRequestID)

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Str("client_request_id", clientRequestID).
		Msg("Sending Stytch request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observe(path, 0, time.Since(start))
		return stytch.NewOtherError(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	c.metrics.observe(path, resp.StatusCode, time.Since(start))
	if err != nil {
		return stytch.NewOtherError(fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out != nil {
			if err := decodeBody(data, out); err != nil {
				return stytch.NewOtherError(fmt.Errorf("failed to decode %d response: %w", resp.StatusCode, err))
			}
		}
		c.logger.Debug().
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("client_request_id", clientRequestID).
			Msg("Stytch request succeeded")
		return nil
	}

	var errResp stytch.ErrorResponse
	if err := decodeBody(data, &errResp); err != nil {
		c.logger.Debug().
			Err(err).
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("client_request_id", clientRequestID).
			Msg("Undecodable Stytch error body")
		return stytch.NewOtherError(fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, truncate(data)))
	}
	if errResp.StatusCode == 0 {
		errResp.StatusCode = resp.StatusCode
	}

	c.logger.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Str("request_id", errResp.RequestID).
		Str("error_type", errResp.ErrorType).
		Str("client_request_id", clientRequestID).
		Msg("Stytch request rejected")

	return stytch.NewResponseError(&errResp)
}

// decodeBody unmarshals data into out and rejects bodies missing required keys
func decodeBody(data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return err
	}
	return stytch.CheckRequired(data, out)
}

func truncate(body []byte) string {
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody]) + "..."
	}
	return string(body)
}

var _ stytch.Sender = (*Client)(nil)
