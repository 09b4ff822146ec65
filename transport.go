package zenobjects

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPTransport is the default Transport implementation. It resolves request
// paths against a fixed base URL, runs the middleware chain and flattens the
// HTTP response into a TransportResponse. Safe for concurrent use.
type HTTPTransport struct {
	baseURL    *url.URL
	httpClient *http.Client
	middleware []Middleware
}

// TransportOption configures an HTTPTransport.
type TransportOption func(*HTTPTransport)

// WithHTTPClient overrides the underlying *http.Client.
func WithHTTPClient(client *http.Client) TransportOption {
	return func(t *HTTPTransport) {
		if client != nil {
			t.httpClient = client
		}
	}
}

// WithTransportMiddleware appends middleware to the transport chain.
func WithTransportMiddleware(middleware ...Middleware) TransportOption {
	return func(t *HTTPTransport) {
		t.middleware = append(t.middleware, middleware...)
	}
}

// NewHTTPTransport builds a transport bound to the provided base URL, e.g.
// "https://acme.zendesk.com". Request URLs are resolved against it.
func NewHTTPTransport(baseURL string, opts ...TransportOption) (*HTTPTransport, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("zenobjects: base URL is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("zenobjects: invalid base URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("zenobjects: base URL %q must be absolute", baseURL)
	}

	t := &HTTPTransport{
		baseURL:    parsed,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Perform issues the normalized request and returns the normalized response.
// Non-2xx statuses are returned as values; only network-level failures and
// secure-channel violations produce errors.
func (t *HTTPTransport) Perform(ctx context.Context, req *TransportRequest) (*TransportResponse, error) {
	if req == nil {
		return nil, errors.New("zenobjects: transport request is nil")
	}
	if req.Method == "" {
		return nil, errors.New("zenobjects: HTTP method is required")
	}

	resolved, err := t.baseURL.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("zenobjects: resolve request URL: %w", err)
	}
	if req.Secure && resolved.Scheme != "https" {
		return nil, ErrSecureChannelRequired
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	var bodyReader io.Reader
	if req.Body != nil {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, resolved.String(), bodyReader)
	if err != nil {
		return nil, err
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := t.roundTrip(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("zenobjects: read response body: %w", err)
	}

	return &TransportResponse{
		StatusCode: resp.StatusCode,
		Headers:    flattenHeader(resp.Header),
		Body:       body,
	}, nil
}

func (t *HTTPTransport) roundTrip(req *http.Request) (*http.Response, error) {
	if len(t.middleware) == 0 {
		return t.httpClient.Do(req)
	}

	current := RoundTripperFunc(t.httpClient.Do)
	for i := len(t.middleware) - 1; i >= 0; i-- {
		middleware := t.middleware[i]
		next := current
		current = RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			return middleware(r, next)
		})
	}
	return current.RoundTrip(req)
}

func flattenHeader(header http.Header) map[string]string {
	flat := make(map[string]string, len(header))
	for key := range header {
		flat[key] = header.Get(key)
	}
	return flat
}

// DefaultTimeout is the transport timeout applied when none is configured.
const DefaultTimeout = 15 * time.Second
