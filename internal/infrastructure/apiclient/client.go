// Package apiclient is the single configured sender for the remote admin API.
//
// Every call reads the bearer token at send time through an Authenticator and
// hands 401 responses back to it before returning the error to the caller.
// Nothing is retried.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/chaldal/admin-console/internal/api/metrics"
	"github.com/chaldal/admin-console/internal/core/domain"
)

const adminPrefix = "/v1/admin"

// maxBody caps how much of a response is read.
const maxBody = 8 << 20

// Authenticator supplies the credential for outgoing requests and is told
// when the server rejects it.
type Authenticator interface {
	BearerToken(ctx context.Context) string
	Unauthorized(ctx context.Context)
}

// Config holds the client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Client talks to the remote API. It is safe for concurrent use.
type Client struct {
	base string
	http *http.Client
	auth Authenticator
	log  zerolog.Logger
}

// New creates a Client. auth may be nil, in which case no credential is sent
// and 401 responses are only returned.
func New(cfg Config, auth Authenticator, log zerolog.Logger) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		base: strings.TrimRight(cfg.BaseURL, "/"),
		http: hc,
		auth: auth,
		log:  log,
	}
}

type request struct {
	endpoint    string
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	// anonymous requests carry no credential and bypass the 401 interceptor.
	anonymous bool
}

type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Errors  FieldErrors     `json:"errors"`
}

// send performs r and returns the envelope's data on success.
func (c *Client) send(ctx context.Context, r request) (json.RawMessage, error) {
	start := time.Now()
	status := "error"
	defer func() {
		metrics.APIRequestsTotal.WithLabelValues(r.endpoint, status).Inc()
		metrics.APIRequestDuration.WithLabelValues(r.endpoint).Observe(time.Since(start).Seconds())
	}()

	target := c.base + adminPrefix + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, r.body)
	if err != nil {
		return nil, c.transportErr(r, err)
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if !r.anonymous && c.auth != nil {
		if token := c.auth.BearerToken(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.transportErr(r, err)
	}
	defer resp.Body.Close()
	status = strconv.Itoa(resp.StatusCode)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, c.transportErr(r, err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode == http.StatusUnauthorized && !r.anonymous && c.auth != nil {
		c.log.Warn().Str("endpoint", r.endpoint).Msg("api: unauthorized, ending session")
		c.auth.Unauthorized(ctx)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{
			Method:  r.method,
			Path:    r.path,
			Status:  resp.StatusCode,
			Message: env.Message,
			Errors:  env.Errors,
		}
		apiErr.kind = classify(resp.StatusCode, env.Errors)
		if resp.StatusCode >= 500 {
			c.log.Error().Str("endpoint", r.endpoint).Int("status", resp.StatusCode).Msg("api: server error")
		} else {
			c.log.Debug().Str("endpoint", r.endpoint).Int("status", resp.StatusCode).Msg("api: request rejected")
		}
		return nil, apiErr
	}

	if decodeErr != nil {
		return nil, &APIError{
			Method: r.method,
			Path:   r.path,
			Status: resp.StatusCode,
			kind:   domain.ErrUpstream,
			cause:  fmt.Errorf("decode envelope: %w", decodeErr),
		}
	}
	if env.Success != nil && !*env.Success {
		return nil, &APIError{
			Method:  r.method,
			Path:    r.path,
			Status:  resp.StatusCode,
			Message: env.Message,
			Errors:  env.Errors,
			kind:    classify(resp.StatusCode, env.Errors),
		}
	}

	c.log.Debug().Str("endpoint", r.endpoint).Int("status", resp.StatusCode).Dur("took", time.Since(start)).Msg("api: ok")
	return env.Data, nil
}

func (c *Client) transportErr(r request, err error) error {
	if !errors.Is(err, context.Canceled) {
		c.log.Warn().Err(err).Str("endpoint", r.endpoint).Msg("api: transport failure")
	}
	return &APIError{
		Method: r.method,
		Path:   r.path,
		kind:   domain.ErrUpstream,
		cause:  err,
	}
}

func (c *Client) get(ctx context.Context, endpoint, path string, q url.Values) (json.RawMessage, error) {
	return c.send(ctx, request{endpoint: endpoint, method: http.MethodGet, path: path, query: q})
}

func (c *Client) delete(ctx context.Context, endpoint, path string) error {
	_, err := c.send(ctx, request{endpoint: endpoint, method: http.MethodDelete, path: path})
	return err
}

func (c *Client) sendJSON(ctx context.Context, endpoint, method, path string, body any) (json.RawMessage, error) {
	buf, err := jsonReader(body)
	if err != nil {
		return nil, fmt.Errorf("apiclient: encode %s: %w", endpoint, err)
	}
	return c.send(ctx, request{
		endpoint:    endpoint,
		method:      method,
		path:        path,
		body:        buf,
		contentType: "application/json",
	})
}

func jsonReader(v any) (*bytes.Reader, error) {
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(buf), nil
}

func decodeInto(data json.RawMessage, out any) error {
	if len(data) == 0 || string(data) == "null" {
		return fmt.Errorf("apiclient: empty data: %w", domain.ErrUpstream)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("apiclient: decode data: %w", err)
	}
	return nil
}

// field decodes data[key] into out.
func field(data json.RawMessage, key string, out any) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("apiclient: decode data: %w", err)
	}
	raw, ok := m[key]
	if !ok || string(raw) == "null" {
		return fmt.Errorf("apiclient: response has no %q: %w", key, domain.ErrUpstream)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("apiclient: decode %s: %w", key, err)
	}
	return nil
}

func idPath(resource string, id int64, rest ...string) string {
	p := "/" + resource + "/" + strconv.FormatInt(id, 10)
	for _, r := range rest {
		p += "/" + r
	}
	return p
}
