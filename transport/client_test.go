package transport

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/s0up4200/stytchctl/stytch"
	"github.com/s0up4200/stytchctl/stytch/sessions"
	"github.com/s0up4200/stytchctl/stytch/users"
)

const (
	testProjectID = "project-test-11111111-1111-1111-1111-111111111111"
	testSecret    = "secret-test-abcdefghijklmnopqrstuvwxyz="
)

func newTestClient(t *testing.T, serverURL string, opts ...Option) *Client {
	t.Helper()
	cfg, err := NewConfig(stytch.Dev(serverURL+"/v1"), testProjectID, testSecret)
	require.NoError(t, err)
	client, err := NewClient(cfg, zerolog.Nop(), opts...)
	require.NoError(t, err)
	return client
}

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		kind   stytch.Kind
		errMsg string
	}{
		{
			name: "missing base URL",
			cfg:  Config{ProjectID: testProjectID, Secret: testSecret},
			kind: stytch.KindInvalidURL,
		},
		{
			name:   "relative base URL",
			cfg:    Config{BaseURL: mustParse(t, "v1/"), ProjectID: testProjectID, Secret: testSecret},
			kind:   stytch.KindInvalidURL,
			errMsg: "not absolute",
		},
		{
			name:   "secret with newline",
			cfg:    Config{BaseURL: mustParse(t, stytch.TestURL), ProjectID: testProjectID, Secret: "secret\r\nX-Injected: 1"},
			kind:   stytch.KindInvalidHeaderValue,
			errMsg: "secret contains invalid characters",
		},
		{
			name:   "project ID with colon",
			cfg:    Config{BaseURL: mustParse(t, stytch.TestURL), ProjectID: "project:test", Secret: testSecret},
			kind:   stytch.KindInvalidHeaderValue,
			errMsg: "must not contain ':'",
		},
		{
			name:   "project ID with control byte",
			cfg:    Config{BaseURL: mustParse(t, stytch.TestURL), ProjectID: "project\x00", Secret: testSecret},
			kind:   stytch.KindInvalidHeaderValue,
			errMsg: "project ID contains invalid characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.cfg, zerolog.Nop())
			require.Error(t, err)

			var stytchErr *stytch.Error
			require.ErrorAs(t, err, &stytchErr)
			assert.Equal(t, tt.kind, stytchErr.Kind)
			if tt.errMsg != "" {
				assert.Contains(t, err.Error(), tt.errMsg)
			}
		})
	}

	t.Run("invalid user agent", func(t *testing.T) {
		cfg := Config{BaseURL: mustParse(t, stytch.TestURL), ProjectID: testProjectID, Secret: testSecret}
		_, err := NewClient(cfg, zerolog.Nop(), WithUserAgent("agent\n"))
		require.ErrorIs(t, err, stytch.ErrInvalidHeaderValue)
	})

	t.Run("valid config", func(t *testing.T) {
		cfg, err := NewConfig(stytch.Test, testProjectID, testSecret)
		require.NoError(t, err)
		client, err := NewClient(cfg, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, stytch.TestURL, client.BaseURL().String())
		assert.Equal(t, DefaultUserAgent, client.userAgent)
		assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
	})
}

func TestClientOptions(t *testing.T) {
	cfg := Config{BaseURL: mustParse(t, stytch.TestURL), ProjectID: testProjectID, Secret: testSecret}

	t.Run("with timeout", func(t *testing.T) {
		client, err := NewClient(cfg, zerolog.Nop(), WithTimeout(5*time.Second))
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
	})

	t.Run("with custom http client", func(t *testing.T) {
		customClient := &http.Client{Timeout: 10 * time.Second}
		client, err := NewClient(cfg, zerolog.Nop(), WithHTTPClient(customClient))
		require.NoError(t, err)
		assert.Same(t, customClient, client.httpClient)
	})

	t.Run("with user agent", func(t *testing.T) {
		client, err := NewClient(cfg, zerolog.Nop(), WithUserAgent("my-app/1.0"))
		require.NoError(t, err)
		assert.Equal(t, "my-app/1.0", client.userAgent)
	})

	t.Run("with tracing", func(t *testing.T) {
		customClient := &http.Client{Timeout: 10 * time.Second}
		client, err := NewClient(cfg, zerolog.Nop(), WithHTTPClient(customClient), WithTracing())
		require.NoError(t, err)
		assert.IsType(t, &otelhttp.Transport{}, client.httpClient.Transport)
		assert.Equal(t, 10*time.Second, client.httpClient.Timeout)
		assert.Nil(t, customClient.Transport, "caller's client must not be modified")
	})
}

func TestConfigLogObject(t *testing.T) {
	cfg, err := NewConfig(stytch.Test, testProjectID, testSecret)
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	logger.Info().Object("config", cfg).Msg("Stytch client ready")

	var entry struct {
		Config map[string]string `json:"config"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, map[string]string{
		"base_url":   stytch.TestURL,
		"project_id": testProjectID,
		"secret":     "[REDACTED]",
	}, entry.Config)
	assert.NotContains(t, buf.String(), testSecret)
}

func TestBasicAuthorization(t *testing.T) {
	value, err := basicAuthorization("project-test-1", "secret-test-1")
	require.NoError(t, err)
	assert.Equal(t, "Basic "+base64.StdEncoding.EncodeToString([]byte("project-test-1:secret-test-1")), value)
}

func TestDoCreated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/users", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get(ClientRequestIDHeader))

		projectID, secret, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, testProjectID, projectID)
		assert.Equal(t, testSecret, secret)

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.JSONEq(t, `{"email":"sandbox@stytch.com","create_user_as_pending":true}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{
			"status_code": 201,
			"request_id": "request-id-test-1",
			"user_id": "user-test-1",
			"user": {},
			"email_id": "email-test-1",
			"status": "pending"
		}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	req := users.CreateRequest{
		Email:               stytch.String("sandbox@stytch.com"),
		CreateUserAsPending: stytch.Bool(true),
	}

	resp, err := stytch.Send[users.CreateResponse](context.Background(), client, req.Build())
	require.NoError(t, err)
	assert.Equal(t, &users.CreateResponse{
		ResponseMeta: stytch.ResponseMeta{StatusCode: http.StatusCreated, RequestID: "request-id-test-1"},
		UserID:       "user-test-1",
		EmailID:      "email-test-1",
		Status:       users.StatusPending,
	}, resp)
}

func TestDoErrorResponse(t *testing.T) {
	errBody := stytch.ErrorResponse{
		StatusCode:   http.StatusBadRequest,
		RequestID:    "request-id-test-2",
		ErrorType:    "duplicate_email",
		ErrorMessage: "A user with the specified email already exists for this project.",
		ErrorURL:     "https://stytch.com/docs/api/errors/400",
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(errBody)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	resp, err := users.NewClient(client).Create(context.Background(), users.CreateRequest{
		Email: stytch.String("sandbox@stytch.com"),
	})
	require.Error(t, err)
	assert.Nil(t, resp)

	var stytchErr *stytch.Error
	require.ErrorAs(t, err, &stytchErr)
	assert.Equal(t, stytch.KindResponse, stytchErr.Kind)
	assert.Equal(t, errBody, *stytchErr.Response)
}

func TestDoErrorResponseFillsStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"request_id":"request-id-test-3","error_type":"session_not_found","error_message":"Session could not be found."}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := sessions.NewClient(client).Revoke(context.Background(), sessions.RevokeRequest{
		SessionID: stytch.String("session-test-1"),
	})

	resp, ok := stytch.AsResponse(err)
	require.True(t, ok)
	assert.True(t, resp.IsNotFound())
	assert.Equal(t, "session_not_found", resp.ErrorType)
}

func TestDoTransportFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		errMsg string
	}{
		{
			name:   "unparsable success body",
			status: http.StatusOK,
			body:   `<html>not json</html>`,
			errMsg: "failed to decode 200 response",
		},
		{
			name:   "success body of the wrong shape",
			status: http.StatusOK,
			body:   `{"status_code":200,"session":{"authentication_factors":[{"delivery_method":"email"}]}}`,
			errMsg: "failed to decode 200 response",
		},
		{
			name:   "unparsable error body",
			status: http.StatusBadGateway,
			body:   `upstream unavailable`,
			errMsg: "API request failed with status 502: upstream unavailable",
		},
		{
			name:   "error body without the error fields",
			status: http.StatusBadGateway,
			body:   `{"message":"bad gateway"}`,
			errMsg: `API request failed with status 502: {"message":"bad gateway"}`,
		},
		{
			name:   "null error body",
			status: http.StatusServiceUnavailable,
			body:   `null`,
			errMsg: "API request failed with status 503: null",
		},
		{
			name:   "error body without a request ID",
			status: http.StatusBadRequest,
			body:   `{"status_code":400,"error_type":"invalid_session_token","error_message":"Session token format is invalid."}`,
			errMsg: "API request failed with status 400",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestClient(t, server.URL)
			resp, err := sessions.NewClient(client).Authenticate(context.Background(), sessions.AuthenticateRequest{
				SessionToken: stytch.String("token"),
			})
			require.Error(t, err)
			assert.Nil(t, resp)

			var stytchErr *stytch.Error
			require.ErrorAs(t, err, &stytchErr)
			assert.Equal(t, stytch.KindOther, stytchErr.Kind)
			assert.Contains(t, err.Error(), tt.errMsg)
			_, ok := stytch.AsResponse(err)
			assert.False(t, ok)
		})
	}
}

func TestDoMissingRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		send   func(*Client) (any, error)
		errMsg string
	}{
		{
			name:   "empty authenticate body",
			status: http.StatusOK,
			body:   `{}`,
			send: func(c *Client) (any, error) {
				return sessions.NewClient(c).Authenticate(context.Background(), sessions.AuthenticateRequest{
					SessionToken: stytch.String("token"),
				})
			},
			errMsg: "missing required fields: status_code, request_id, session, session_jwt",
		},
		{
			name:   "empty create body",
			status: http.StatusCreated,
			body:   `{}`,
			send: func(c *Client) (any, error) {
				return users.NewClient(c).Create(context.Background(), users.CreateRequest{
					Email: stytch.String("sandbox@stytch.com"),
				})
			},
			errMsg: "failed to decode 201 response: missing required fields: status_code, request_id, user_id, user, email_id, status",
		},
		{
			name:   "session without its fields",
			status: http.StatusOK,
			body:   `{"status_code":200,"request_id":"request-id-test-5","session":{},"session_jwt":""}`,
			send: func(c *Client) (any, error) {
				return sessions.NewClient(c).Authenticate(context.Background(), sessions.AuthenticateRequest{
					SessionToken: stytch.String("token"),
				})
			},
			errMsg: "session.session_id",
		},
		{
			name:   "null revoke body",
			status: http.StatusOK,
			body:   `null`,
			send: func(c *Client) (any, error) {
				return sessions.NewClient(c).Revoke(context.Background(), sessions.RevokeRequest{
					SessionID: stytch.String("session-test-1"),
				})
			},
			errMsg: "body is null",
		},
		{
			name:   "request ID holding null",
			status: http.StatusOK,
			body:   `{"status_code":200,"request_id":null}`,
			send: func(c *Client) (any, error) {
				return sessions.NewClient(c).Revoke(context.Background(), sessions.RevokeRequest{
					SessionID: stytch.String("session-test-1"),
				})
			},
			errMsg: "missing required fields: request_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := tt.send(newTestClient(t, server.URL))
			require.Error(t, err)

			var stytchErr *stytch.Error
			require.ErrorAs(t, err, &stytchErr)
			assert.Equal(t, stytch.KindOther, stytchErr.Kind)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestDoNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	client := newTestClient(t, server.URL)
	server.Close()

	err := client.Do(context.Background(), http.MethodPost, sessions.RevokePath, sessions.RevokeRequest{}, &sessions.RevokeResponse{})
	require.Error(t, err)

	var stytchErr *stytch.Error
	require.ErrorAs(t, err, &stytchErr)
	assert.Equal(t, stytch.KindOther, stytchErr.Kind)
	assert.Contains(t, err.Error(), "request failed")
}

func TestDoContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := newTestClient(t, server.URL)
	err := client.Do(ctx, http.MethodPost, sessions.RevokePath, sessions.RevokeRequest{}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestDoUnencodableBody(t *testing.T) {
	client := newTestClient(t, "http://127.0.0.1:1")
	err := client.Do(context.Background(), http.MethodPost, "users", map[string]any{"bad": make(chan int)}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to encode request")
}

func TestDoConcurrent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req sessions.RevokeRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status_code": 200,
			"request_id":  "request-" + *req.SessionID,
		})
	}))
	defer server.Close()

	client := sessions.NewClient(newTestClient(t, server.URL))

	var wg sync.WaitGroup
	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	results := make([]string, len(ids))
	for i, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := client.Revoke(context.Background(), sessions.RevokeRequest{SessionID: stytch.String(id)})
			if assert.NoError(t, err) {
				results[i] = resp.RequestID
			}
		}()
	}
	wg.Wait()

	for i, id := range ids {
		assert.Equal(t, "request-"+id, results[i])
	}
}

func TestMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/sessions/revoke" {
			_, _ = w.Write([]byte(`{"status_code":200,"request_id":"request-id-test-1"}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status_code":401,"request_id":"request-id-test-4","error_type":"unauthorized_credentials","error_message":"Unauthorized credentials."}`))
	}))
	defer server.Close()

	reg := prometheus.NewRegistry()
	client := newTestClient(t, server.URL, WithMetrics(reg))
	api := sessions.NewClient(client)
	ctx := context.Background()

	_, err := api.Revoke(ctx, sessions.RevokeRequest{SessionID: stytch.String("session-1")})
	require.NoError(t, err)
	_, err = api.Revoke(ctx, sessions.RevokeRequest{SessionID: stytch.String("session-2")})
	require.NoError(t, err)
	_, err = api.Authenticate(ctx, sessions.AuthenticateRequest{SessionToken: stytch.String("token")})
	require.Error(t, err)

	assert.Equal(t, 2.0, promtestutil.ToFloat64(client.metrics.requests.WithLabelValues(sessions.RevokePath, "200")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(client.metrics.requests.WithLabelValues(sessions.AuthenticatePath, "401")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "stytch_client_requests_total")
	assert.Contains(t, names, "stytch_client_request_duration_seconds")
}
