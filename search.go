package zenobjects

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

const searchEndpoint = "/records/search"

// RecordStore exposes the record operations for one custom object type. All
// stores created from the same Client share its transport, cache and
// invalidation signals.
type RecordStore struct {
	client         *Client
	resource       string
	refetchOnFocus bool
	hooks          StoreHooks
}

// WithRefetchOnFocus gates whether this store's cached searches are marked
// stale when the host viewport regains focus (see Client.NotifyFocus).
func WithRefetchOnFocus(enabled bool) StoreOption {
	return func(s *RecordStore) {
		s.refetchOnFocus = enabled
	}
}

// WithStoreHooks attaches mutation callbacks to the store.
func WithStoreHooks(hooks StoreHooks) StoreOption {
	return func(s *RecordStore) {
		s.hooks = hooks
	}
}

// Resource returns the store's resource key.
func (s *RecordStore) Resource() string {
	return s.resource
}

// Search issues a filtered search for records, serving fresh cached results
// without I/O. Concurrent identical searches are coalesced into one request.
func (s *RecordStore) Search(ctx context.Context, opts SearchOptions) ([]Record, error) {
	raw, err := s.searchRaw(ctx, opts, false)
	if err != nil {
		return nil, err
	}
	return decodeRecords(raw)
}

// Refetch bypasses the freshness window and fetches from the remote,
// re-populating the cache. It is the manual refetch escape hatch; automatic
// staleness and focus policies are independent of it.
func (s *RecordStore) Refetch(ctx context.Context, opts SearchOptions) ([]Record, error) {
	raw, err := s.searchRaw(ctx, opts, true)
	if err != nil {
		return nil, err
	}
	return decodeRecords(raw)
}

// Invalidate drops every cached search for this resource and signals
// subscribed readers. The next Search fetches fresh data.
func (s *RecordStore) Invalidate() {
	s.client.invalidate(s.resource)
}

// Updates returns a channel that receives a signal whenever this resource's
// cached searches are invalidated or marked stale. Readers typically respond
// by calling Search again.
func (s *RecordStore) Updates() <-chan struct{} {
	return s.client.hub.Subscribe(s.resource)
}

// SearchAs issues the same search as RecordStore.Search but hands the raw
// response body to translate for typed decoding. The translation function is
// required; a nil translate fails before any request is issued.
func SearchAs[T any](ctx context.Context, s *RecordStore, opts SearchOptions, translate TranslateFunc[T]) ([]T, error) {
	if translate == nil {
		return nil, newConfigError(s.resource, "translation function is required")
	}
	raw, err := s.searchRaw(ctx, opts, false)
	if err != nil {
		return nil, err
	}
	return translate(raw)
}

func (s *RecordStore) searchRaw(ctx context.Context, opts SearchOptions, force bool) ([]byte, error) {
	filter, err := buildFilter(s.resource, opts)
	if err != nil {
		return nil, err
	}

	c := s.client
	key := cacheKey(s.resource, filter)

	if !force {
		if entry, found := c.cache.Get(key); found && c.isFresh(entry) {
			if c.metrics != nil {
				c.metrics.RecordCacheHit(s.resource)
			}
			if c.debug != nil && c.debug.Enabled && c.debug.LogCache && c.logger != nil {
				c.logger.Debug("Cache hit", "resource", s.resource, "cacheKey", key)
			}
			return entry.Body, nil
		}
		if c.metrics != nil {
			c.metrics.RecordCacheMiss(s.resource)
		}
	}

	body, shared, err := c.flight.Do(key, func() ([]byte, error) {
		raw, fireErr := c.fire(ctx, s.resource, searchEndpoint, http.MethodPost, nil, nil, filter)
		if fireErr != nil {
			return nil, fireErr
		}
		c.cache.Set(key, &RecordCacheEntry{
			Body:      raw,
			FetchedAt: time.Now(),
		})
		if c.metrics != nil {
			if cache, ok := c.cache.(*InMemoryRecordCache); ok {
				c.metrics.RecordCacheSize("default", cache.Len())
			}
		}
		return raw, nil
	})
	if shared && c.metrics != nil {
		c.metrics.RecordCoalescedSearch(s.resource)
	}
	return body, err
}

func (c *Client) isFresh(entry *RecordCacheEntry) bool {
	if entry == nil || entry.Stale {
		return false
	}
	return time.Since(entry.FetchedAt) < c.staleTTL
}

// buildFilter resolves SearchOptions into the effective filter body. Filter
// and SearchBy are mutually exclusive; neither yields an empty filter, which
// the server treats as match-all.
func buildFilter(resource string, opts SearchOptions) (Filter, error) {
	if opts.Filter != nil && opts.SearchBy != nil {
		return nil, newConfigError(resource, "filter and search-by are mutually exclusive")
	}
	if opts.SearchBy != nil {
		return Filter{
			"$and": []any{
				map[string]any{
					"custom_object_fields." + opts.SearchBy.By: map[string]any{"$eq": opts.SearchBy.Value},
				},
			},
		}, nil
	}
	if opts.Filter != nil {
		return opts.Filter, nil
	}
	return Filter{}, nil
}

type recordsEnvelope struct {
	Records []Record `json:"custom_object_records"`
}

type recordEnvelope struct {
	Record Record `json:"custom_object_record"`
}

// decodeRecords is the default translation from a raw search response to the
// typed result slice. An empty body translates to an empty slice.
func decodeRecords(raw []byte) ([]Record, error) {
	if len(raw) == 0 {
		return []Record{}, nil
	}
	var envelope recordsEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, &ClientError{
			Type:      ErrorTypeRemote,
			Message:   "decode search response",
			Cause:     err,
			Timestamp: time.Now(),
		}
	}
	if envelope.Records == nil {
		return []Record{}, nil
	}
	return envelope.Records, nil
}

func decodeRecord(raw []byte) (*Record, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var envelope recordEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, &ClientError{
			Type:      ErrorTypeRemote,
			Message:   "decode record response",
			Cause:     err,
			Timestamp: time.Now(),
		}
	}
	return &envelope.Record, nil
}
