package zenobjects

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/MatheusDev20/zenobjects/internal/singleflight"
)

// DefaultBaseEndpoint is the fixed path prefix for the custom objects API.
const DefaultBaseEndpoint = "/api/v2/custom_objects"

// DefaultStaleTTL is the window within which cached search results are
// considered fresh and are not silently refetched.
const DefaultStaleTTL = time.Minute

// Client shapes requests for the custom objects records API, delegates them
// to the injected Transport and owns the read cache shared by all record
// stores. It is safe for concurrent use.
type Client struct {
	transport     Transport
	baseEndpoint  string
	timeout       time.Duration
	staleTTL      time.Duration
	allowInsecure bool
	cache         RecordCache
	hub           *signalHub
	flight        *singleflight.Group
	metrics       *MetricsCollector
	debug         *DebugConfig
	logger        Logger

	mu     sync.Mutex
	stores []*RecordStore

	validationError error
}

// New constructs a Client around the supplied transport using the provided
// functional options. A best effort validation is performed; call IsValid /
// ValidationError for errors.
func New(transport Transport, options ...Option) *Client {
	client := &Client{
		transport:    transport,
		baseEndpoint: DefaultBaseEndpoint,
		timeout:      DefaultTimeout,
		staleTTL:     DefaultStaleTTL,
		cache:        NewInMemoryRecordCache(),
		hub:          newSignalHub(),
		flight:       singleflight.New(),
		metrics:      nil,
		debug:        DefaultDebugConfig(),
		logger:       nil,
	}

	for _, option := range options {
		option(client)
	}

	if err := client.ValidateConfiguration(); err != nil {
		client.validationError = err
	}

	return client
}

// IsValid reports whether configuration validation passed at construction.
func (c *Client) IsValid() bool {
	return c.validationError == nil
}

// ValidationError returns the configuration validation error, if any.
func (c *Client) ValidationError() error {
	return c.validationError
}

// ValidateConfigurationStrict panics if configuration is invalid.
func (c *Client) ValidateConfigurationStrict() {
	if err := c.ValidateConfiguration(); err != nil {
		panic(fmt.Sprintf("invalid client configuration: %v", err))
	}
}

// Records returns a store scoped to one custom object type. The resource key
// must be a non-empty string; a blank key fails immediately without issuing
// any request. Stores created for the same resource key share cached results.
func (c *Client) Records(resourceKey string, opts ...StoreOption) (*RecordStore, error) {
	if strings.TrimSpace(resourceKey) == "" {
		return nil, newConfigError(resourceKey, "resource key is required")
	}
	if c.validationError != nil {
		return nil, c.validationError
	}

	store := &RecordStore{
		client:   c,
		resource: resourceKey,
	}
	for _, opt := range opts {
		opt(store)
	}

	c.mu.Lock()
	c.stores = append(c.stores, store)
	c.mu.Unlock()

	return store, nil
}

// NotifyFocus signals that the host viewport regained focus. Stores created
// with WithRefetchOnFocus(true) have their cached searches marked stale and
// their subscribers signalled, so the next read fetches fresh data.
func (c *Client) NotifyFocus() {
	c.mu.Lock()
	stores := make([]*RecordStore, len(c.stores))
	copy(stores, c.stores)
	c.mu.Unlock()

	seen := make(map[string]bool)
	for _, store := range stores {
		if !store.refetchOnFocus || seen[store.resource] {
			continue
		}
		seen[store.resource] = true
		c.cache.MarkStale(store.resource)
		c.hub.Broadcast(store.resource)

		if c.debug != nil && c.debug.Enabled && c.debug.LogCache && c.logger != nil {
			c.logger.Debug("Focus refetch triggered", "resource", store.resource)
		}
	}
}

// invalidate drops every cached search under the resource's tag and signals
// subscribed readers.
func (c *Client) invalidate(resource string) {
	c.cache.InvalidateTag(resource)
	c.hub.Broadcast(resource)

	if c.metrics != nil {
		c.metrics.RecordInvalidation(resource)
		if cache, ok := c.cache.(*InMemoryRecordCache); ok {
			c.metrics.RecordCacheSize("default", cache.Len())
		}
	}

	if c.debug != nil && c.debug.Enabled && c.debug.LogCache && c.logger != nil {
		c.logger.Debug("Cache invalidated", "resource", resource)
	}
}

// fire builds and issues one request: composes the resource path, applies
// path and query templating, serializes the body and normalizes failures
// into *ClientError. A nil body means no request body is sent.
func (c *Client) fire(ctx context.Context, resource, endpoint, method string, pathParams, queryParams map[string]string, body any) ([]byte, error) {
	start := time.Now()

	path := c.baseEndpoint + "/" + resource + endpoint
	if pathParams != nil {
		path = SubstitutePath(path, pathParams)
	}
	if queryParams != nil {
		path = AppendQuery(path, queryParams)
	}

	var requestID string
	if c.debug != nil && c.debug.Enabled && c.debug.RequestIDGen != nil {
		requestID = c.debug.RequestIDGen()
	}
	if c.debug != nil && c.debug.Enabled && c.debug.LogRequests && c.logger != nil {
		c.logger.Debug("Starting request", "requestID", requestID, "method", method, "path", path, "resource", resource)
	}

	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, &ClientError{
				Type:      ErrorTypeConfig,
				Message:   "encode request body",
				Resource:  resource,
				Method:    method,
				URL:       path,
				RequestID: requestID,
				Cause:     err,
				Timestamp: time.Now(),
			}
		}
		payload = encoded
	}

	if c.metrics != nil {
		c.metrics.RecordRequestStart(method, endpoint)
		defer c.metrics.RecordRequestEnd(method, endpoint)
	}

	resp, err := c.transport.Perform(ctx, &TransportRequest{
		Method:  method,
		URL:     path,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    payload,
		Timeout: c.timeout,
		Secure:  !c.allowInsecure,
	})

	duration := time.Since(start)

	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordRequest(method, endpoint, 0, duration)
			c.metrics.RecordError(ErrorTypeTransport, method, endpoint)
		}
		if c.debug != nil && c.debug.Enabled && c.debug.LogRequests && c.logger != nil {
			c.logger.Warn("Transport failure", "requestID", requestID, "method", method, "path", path, "error", err.Error())
		}
		return nil, &ClientError{
			Type:      ErrorTypeTransport,
			Message:   "request failed without a status",
			Resource:  resource,
			Method:    method,
			URL:       path,
			RequestID: requestID,
			Cause:     err,
			Timestamp: time.Now(),
			Duration:  duration,
		}
	}

	if c.metrics != nil {
		c.metrics.RecordRequest(method, endpoint, resp.StatusCode, duration)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		if c.metrics != nil {
			c.metrics.RecordError(ErrorTypeRemote, method, endpoint)
		}
		if c.debug != nil && c.debug.Enabled && c.debug.LogRequests && c.logger != nil {
			c.logger.Warn("Remote failure", "requestID", requestID, "method", method, "path", path, "status", resp.StatusCode)
		}
		return nil, &ClientError{
			Type:       ErrorTypeRemote,
			Message:    "remote returned an error status",
			Resource:   resource,
			Method:     method,
			URL:        path,
			StatusCode: resp.StatusCode,
			Body:       resp.Body,
			RequestID:  requestID,
			Timestamp:  time.Now(),
			Duration:   duration,
		}
	}

	if c.debug != nil && c.debug.Enabled && c.debug.LogRequests && c.logger != nil {
		c.logger.Debug("Request completed", "requestID", requestID, "method", method, "path", path, "status", resp.StatusCode, "duration", duration)
	}

	return resp.Body, nil
}
