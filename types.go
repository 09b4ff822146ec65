package zenobjects

import (
	"context"
	"net/http"
	"time"
)

// Fields is the flat mapping of custom field names to values carried by a
// record. Values are whatever the remote schema defines (strings, numbers,
// booleans, nested lookups).
type Fields map[string]any

// Record is a single custom object record as returned by the records API.
type Record struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Fields    Fields `json:"custom_object_fields"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Filter is a pre-built search filter expression sent verbatim as the search
// request body (e.g. {"$and": [...]}).
type Filter map[string]any

// SearchBy is a single-field equality search. The effective filter becomes
// an $and list with one $eq clause on custom_object_fields.<By>.
type SearchBy struct {
	By    string
	Value any
}

// SearchOptions configures a single search call. Filter and SearchBy are
// mutually exclusive; supplying both is a configuration error.
type SearchOptions struct {
	Filter   Filter
	SearchBy *SearchBy
}

// TranslateFunc converts a raw search response body into a typed result set.
type TranslateFunc[T any] func(raw []byte) ([]T, error)

// CreateRecordParams carries the payload for Create. Name must be non-empty
// and Fields must be present (an empty map is a present mapping).
type CreateRecordParams struct {
	Name   string
	Fields Fields
}

// UpdateRecordParams carries the payload for Update. ID is required; Name is
// included in the request body only when non-empty.
type UpdateRecordParams struct {
	ID     string
	Name   string
	Fields Fields
}

// StoreHooks is a container for callbacks that instrument a RecordStore's
// mutations. All hooks are optional.
type StoreHooks struct {
	// AfterCreate runs after a successful Create, once the read cache for the
	// resource has been invalidated.
	AfterCreate func()

	// OnUpdated runs after a successful Update with the updated record id,
	// before cache invalidation.
	OnUpdated func(id string)

	// AfterUpdate runs after a successful Update, once the read cache for the
	// resource has been invalidated.
	AfterUpdate func()

	// OnDeleted runs after a successful Delete, before cache invalidation.
	OnDeleted func()

	// AfterDelete runs after a successful Delete, once the read cache for the
	// resource has been invalidated.
	AfterDelete func()
}

// TransportRequest is the normalized request handed to a Transport.
type TransportRequest struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte // nil means no request body
	Timeout time.Duration
	Secure  bool // require a secure channel to the remote service
}

// TransportResponse is the normalized response returned by a Transport.
// Responses with a non-2xx status are returned as values, not errors;
// the client normalizes them into *ClientError.
type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// Transport is the narrow request-issuing capability the client borrows for
// each call. Implementations must be safe for concurrent use.
type Transport interface {
	Perform(ctx context.Context, req *TransportRequest) (*TransportResponse, error)
}

// Middleware wraps the HTTP transport for cross-cutting concerns.
type Middleware func(req *http.Request, next RoundTripper) (*http.Response, error)

// RoundTripper represents the HTTP transport interface.
type RoundTripper interface {
	RoundTrip(*http.Request) (*http.Response, error)
}

// RoundTripperFunc is a helper type for middleware.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// RecordCacheEntry is one cached search response.
type RecordCacheEntry struct {
	Body      []byte
	FetchedAt time.Time
	Stale     bool
}

// RecordCache stores search responses keyed by cache key, grouped under a
// per-resource tag for scoped invalidation. Implementations must be safe for
// concurrent use.
type RecordCache interface {
	Get(key string) (*RecordCacheEntry, bool)
	Set(key string, entry *RecordCacheEntry)
	InvalidateTag(tag string)
	MarkStale(tag string)
	Clear()
}

// Option represents a client configuration option.
type Option func(*Client)

// StoreOption configures a RecordStore at construction time.
type StoreOption func(*RecordStore)
