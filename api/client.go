package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-hrms-client/store"
	"github.com/rs/zerolog"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	defaultTimeout  = 30 * time.Second
)

// Client issues HTTP calls against the HRMS backend. It attaches the stored
// bearer credential to every request, bounds each call with a timeout, and
// on a 401 drives a single coordinated token renewal followed by exactly one
// retry. All failures come back as *Error; Client never panics across its
// boundary and never performs navigation itself.
type Client struct {
	baseURL           string
	timeout           time.Duration
	store             store.Store
	httpClient        *http.Client
	renewer           *renewer
	onUnauthenticated func()
	log               zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request bound. The same bound applies to the
// renewal call.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient replaces the underlying transport.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.log = logger
	}
}

// WithUnauthenticatedHook registers a callback fired once when a session
// becomes terminally unauthenticated (renewal failed or was impossible).
// The session layer uses it to navigate to the login entry point.
func WithUnauthenticatedHook(hook func()) Option {
	return func(c *Client) {
		c.onUnauthenticated = hook
	}
}

// New creates a Client against baseURL, persisting credentials in st.
func New(baseURL string, st store.Store, options ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("[api.New] baseURL is required")
	}
	if st == nil {
		return nil, errors.New("[api.New] store is required")
	}

	client := &Client{
		baseURL: baseURL,
		timeout: defaultTimeout,
		store:   st,
		log:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{}
	}
	client.renewer = &renewer{
		baseURL:    baseURL,
		timeout:    client.timeout,
		store:      st,
		httpClient: client.httpClient,
		log:        client.log,
	}
	return client, nil
}

// RequestOption customises a single request.
type RequestOption func(*requestOptions)

type requestOptions struct {
	headers http.Header
}

// WithHeader adds a header value to the request; repeated options for the
// same key accumulate. Supplying an Authorization value suppresses the
// automatic bearer attach and, with it, the renew-and-retry behaviour.
func WithHeader(key, value string) RequestOption {
	return func(opts *requestOptions) {
		if opts.headers == nil {
			opts.headers = http.Header{}
		}
		opts.headers.Add(key, value)
	}
}

// Do sends a request and decodes the envelope's data payload into out (which
// may be nil when no payload is expected). The returned error is always a
// *Error when non-nil.
func (c *Client) Do(ctx context.Context, method, path string, body, out any, options ...RequestOption) error {
	var opts requestOptions
	for _, opt := range options {
		opt(&opts)
	}

	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			c.log.Error().Err(err).Str("path", path).Msg("failed to encode request body")
			return newHTTPError(0, genericFailureMessage)
		}
		payload = encoded
	}

	token := c.accessToken()
	attachedBearer := token != "" && opts.headers.Get("Authorization") == ""

	bearer := ""
	if attachedBearer {
		bearer = token
	}
	status, envelope, err := c.doOnce(ctx, method, path, payload, opts.headers, bearer)
	if err != nil {
		return err
	}

	// A 401 on a request we authenticated means the access token has
	// expired. Renew once (coordinated across all concurrent callers) and
	// retry exactly once with the fresh token; the retry's outcome is final.
	if status == http.StatusUnauthorized && attachedBearer {
		newToken := c.renewer.Renew()
		if newToken == "" {
			c.log.Debug().Str("path", path).Msg("token renewal failed, session terminated")
			if c.onUnauthenticated != nil {
				c.onUnauthenticated()
			}
			return newUnauthenticatedError()
		}
		status, envelope, err = c.doOnce(ctx, method, path, payload, opts.headers, newToken)
		if err != nil {
			return err
		}
	}

	return c.decodeEnvelope(status, envelope, out)
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, out any, options ...RequestOption) error {
	return c.Do(ctx, http.MethodGet, path, nil, out, options...)
}

// Post issues a POST request.
func (c *Client) Post(ctx context.Context, path string, body, out any, options ...RequestOption) error {
	return c.Do(ctx, http.MethodPost, path, body, out, options...)
}

// Put issues a PUT request.
func (c *Client) Put(ctx context.Context, path string, body, out any, options ...RequestOption) error {
	return c.Do(ctx, http.MethodPut, path, body, out, options...)
}

// Patch issues a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body, out any, options ...RequestOption) error {
	return c.Do(ctx, http.MethodPatch, path, body, out, options...)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, out any, options ...RequestOption) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out, options...)
}

// ClearAuth drops all persisted credentials and cached snapshots.
func (c *Client) ClearAuth() {
	c.store.Clear()
}

func (c *Client) accessToken() string {
	session := c.store.Read()
	if session == nil {
		return ""
	}
	return session.AccessToken
}

// doOnce performs a single HTTP exchange under the configured timeout and
// decodes the response envelope. Transport failures come back as typed
// errors; HTTP-level failures are left in the returned envelope for the
// caller to interpret.
func (c *Client) doOnce(ctx context.Context, method, path string, payload []byte, headers http.Header, bearer string) (int, *Envelope, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var bodyReader *bytes.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(reqCtx, method, c.baseURL+path, bodyReader)
	if err != nil {
		c.log.Error().Err(err).Str("path", path).Msg("failed to build request")
		return 0, nil, newNetworkError()
	}

	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("X-Request-ID", uuid.New().String())
	for key, values := range headers {
		req.Header.Del(key)
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || reqCtx.Err() == context.DeadlineExceeded {
			c.log.Debug().Str("method", method).Str("path", path).Dur("elapsed", time.Since(started)).Msg("request timed out")
			return 0, nil, newTimeoutError()
		}
		c.log.Debug().Err(err).Str("method", method).Str("path", path).Msg("request failed without a response")
		return 0, nil, newNetworkError()
	}
	defer resp.Body.Close()

	c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Dur("elapsed", time.Since(started)).Msg("request completed")

	var envelope Envelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		// No parseable envelope. A non-success status still carries meaning.
		return resp.StatusCode, nil, nil
	}
	return resp.StatusCode, &envelope, nil
}

// decodeEnvelope turns an HTTP exchange into the caller's result.
func (c *Client) decodeEnvelope(status int, envelope *Envelope, out any) error {
	if envelope == nil {
		if status < 200 || status >= 300 {
			return newHTTPError(status, "")
		}
		return nil
	}
	if !envelope.Success {
		return newHTTPError(status, envelope.errorMessage())
	}
	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			c.log.Error().Err(err).Msg("failed to decode response data")
			return newHTTPError(status, genericFailureMessage)
		}
	}
	return nil
}
