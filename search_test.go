package zenobjects

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"
	"sync"
	"testing"
	"time"
)

func TestSearchExclusiveOptionsFail(t *testing.T) {
	transport := &fakeTransport{}
	client := New(transport)
	store, _ := client.Records("users")

	_, err := store.Search(context.Background(), SearchOptions{
		Filter:   Filter{"$or": []any{}},
		SearchBy: &SearchBy{By: "status", Value: "active"},
	})
	if err == nil {
		t.Fatal("Search() with both filter and search-by should fail")
	}
	if !IsConfig(err) {
		t.Errorf("Expected config error, got %v", err)
	}
	if transport.calls() != 0 {
		t.Errorf("Exclusive options must fail before any request, got %d calls", transport.calls())
	}
}

func TestSearchBySingleFieldFilterShape(t *testing.T) {
	transport := &fakeTransport{}
	client := New(transport)
	store, _ := client.Records("users")

	_, err := store.Search(context.Background(), SearchOptions{
		SearchBy: &SearchBy{By: "status", Value: "active"},
	})
	if err != nil {
		t.Fatalf("Search() returned error: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(transport.lastRequest().Body, &got); err != nil {
		t.Fatalf("Request body is not valid JSON: %v", err)
	}

	want := map[string]any{
		"$and": []any{
			map[string]any{
				"custom_object_fields.status": map[string]any{"$eq": "active"},
			},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Filter body = %v, want %v", got, want)
	}
}

func TestSearchEmptyFilterByDefault(t *testing.T) {
	transport := &fakeTransport{}
	client := New(transport)
	store, _ := client.Records("users")

	if _, err := store.Search(context.Background(), SearchOptions{}); err != nil {
		t.Fatalf("Search() returned error: %v", err)
	}

	if string(transport.lastRequest().Body) != "{}" {
		t.Errorf("Expected empty filter body, got %q", transport.lastRequest().Body)
	}
}

func TestSearchPrebuiltFilterPassedVerbatim(t *testing.T) {
	transport := &fakeTransport{}
	client := New(transport)
	store, _ := client.Records("users")

	filter := Filter{"$or": []any{map[string]any{"custom_object_fields.tier": map[string]any{"$eq": "gold"}}}}
	if _, err := store.Search(context.Background(), SearchOptions{Filter: filter}); err != nil {
		t.Fatalf("Search() returned error: %v", err)
	}

	var got Filter
	if err := json.Unmarshal(transport.lastRequest().Body, &got); err != nil {
		t.Fatalf("Request body is not valid JSON: %v", err)
	}
	if _, ok := got["$or"]; !ok {
		t.Errorf("Pre-built filter should be sent verbatim, got %v", got)
	}
}

func TestSearchDecodesRecords(t *testing.T) {
	transport := &fakeTransport{
		respond: func(req *TransportRequest) (*TransportResponse, error) {
			return &TransportResponse{
				StatusCode: http.StatusOK,
				Body:       []byte(`{"custom_object_records":[{"id":"1","name":"laptop","custom_object_fields":{"status":"active"}}]}`),
			}, nil
		},
	}
	client := New(transport)
	store, _ := client.Records("assets")

	records, err := store.Search(context.Background(), SearchOptions{})
	if err != nil {
		t.Fatalf("Search() returned error: %v", err)
	}

	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].ID != "1" || records[0].Name != "laptop" {
		t.Errorf("Unexpected record %+v", records[0])
	}
	if records[0].Fields["status"] != "active" {
		t.Errorf("Unexpected fields %v", records[0].Fields)
	}
}

func TestSearchServesFreshCache(t *testing.T) {
	transport := &fakeTransport{}
	client := New(transport)
	store, _ := client.Records("users")

	ctx := context.Background()
	if _, err := store.Search(ctx, SearchOptions{}); err != nil {
		t.Fatalf("Search() returned error: %v", err)
	}
	if _, err := store.Search(ctx, SearchOptions{}); err != nil {
		t.Fatalf("Search() returned error: %v", err)
	}

	if transport.calls() != 1 {
		t.Errorf("Second search within the staleness window should be served from cache, got %d calls", transport.calls())
	}
}

func TestSearchRefetchesWhenStale(t *testing.T) {
	transport := &fakeTransport{}
	client := New(transport, WithStaleTTL(10*time.Millisecond))
	store, _ := client.Records("users")

	ctx := context.Background()
	if _, err := store.Search(ctx, SearchOptions{}); err != nil {
		t.Fatalf("Search() returned error: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	if _, err := store.Search(ctx, SearchOptions{}); err != nil {
		t.Fatalf("Search() returned error: %v", err)
	}
	if transport.calls() != 2 {
		t.Errorf("Search past the staleness window should refetch, got %d calls", transport.calls())
	}
}

func TestSearchSharedAcrossStoreInstances(t *testing.T) {
	transport := &fakeTransport{}
	client := New(transport)

	first, _ := client.Records("users")
	second, _ := client.Records("users")

	ctx := context.Background()
	if _, err := first.Search(ctx, SearchOptions{}); err != nil {
		t.Fatalf("Search() returned error: %v", err)
	}
	if _, err := second.Search(ctx, SearchOptions{}); err != nil {
		t.Fatalf("Search() returned error: %v", err)
	}

	if transport.calls() != 1 {
		t.Errorf("Identical resource keys should share cached results, got %d calls", transport.calls())
	}
}

func TestSearchDistinctFiltersCachedSeparately(t *testing.T) {
	transport := &fakeTransport{}
	client := New(transport)
	store, _ := client.Records("users")

	ctx := context.Background()
	if _, err := store.Search(ctx, SearchOptions{}); err != nil {
		t.Fatalf("Search() returned error: %v", err)
	}
	if _, err := store.Search(ctx, SearchOptions{SearchBy: &SearchBy{By: "status", Value: "active"}}); err != nil {
		t.Fatalf("Search() returned error: %v", err)
	}

	if transport.calls() != 2 {
		t.Errorf("Different filters must not share a cache entry, got %d calls", transport.calls())
	}
}

func TestRefetchBypassesFreshness(t *testing.T) {
	transport := &fakeTransport{}
	client := New(transport)
	store, _ := client.Records("users")

	ctx := context.Background()
	if _, err := store.Search(ctx, SearchOptions{}); err != nil {
		t.Fatalf("Search() returned error: %v", err)
	}
	if _, err := store.Refetch(ctx, SearchOptions{}); err != nil {
		t.Fatalf("Refetch() returned error: %v", err)
	}

	if transport.calls() != 2 {
		t.Errorf("Refetch should bypass the freshness window, got %d calls", transport.calls())
	}
}

func TestInvalidateForcesFreshFetch(t *testing.T) {
	transport := &fakeTransport{}
	client := New(transport)
	store, _ := client.Records("users")

	ctx := context.Background()
	if _, err := store.Search(ctx, SearchOptions{}); err != nil {
		t.Fatalf("Search() returned error: %v", err)
	}

	store.Invalidate()

	if _, err := store.Search(ctx, SearchOptions{}); err != nil {
		t.Fatalf("Search() returned error: %v", err)
	}
	if transport.calls() != 2 {
		t.Errorf("Search after invalidation should refetch, got %d calls", transport.calls())
	}
}

func TestUpdatesSignalOnInvalidation(t *testing.T) {
	transport := &fakeTransport{}
	client := New(transport)
	store, _ := client.Records("users")

	updates := store.Updates()
	store.Invalidate()

	select {
	case <-updates:
	case <-time.After(time.Second):
		t.Error("Expected an invalidation signal")
	}
}

func TestSearchAsRequiresTranslator(t *testing.T) {
	transport := &fakeTransport{}
	client := New(transport)
	store, _ := client.Records("users")

	_, err := SearchAs[Record](context.Background(), store, SearchOptions{}, nil)
	if err == nil {
		t.Fatal("SearchAs() with a nil translator should fail")
	}
	if !IsConfig(err) {
		t.Errorf("Expected config error, got %v", err)
	}
	if transport.calls() != 0 {
		t.Errorf("Missing translator must fail before any request, got %d calls", transport.calls())
	}
}

func TestSearchAsTranslates(t *testing.T) {
	transport := &fakeTransport{
		respond: func(req *TransportRequest) (*TransportResponse, error) {
			return &TransportResponse{
				StatusCode: http.StatusOK,
				Body:       []byte(`{"custom_object_records":[{"id":"1","name":"a"},{"id":"2","name":"b"}]}`),
			}, nil
		},
	}
	client := New(transport)
	store, _ := client.Records("users")

	names, err := SearchAs(context.Background(), store, SearchOptions{}, func(raw []byte) ([]string, error) {
		records, decodeErr := decodeRecords(raw)
		if decodeErr != nil {
			return nil, decodeErr
		}
		out := make([]string, 0, len(records))
		for _, r := range records {
			out = append(out, r.Name)
		}
		return out, nil
	})
	if err != nil {
		t.Fatalf("SearchAs() returned error: %v", err)
	}

	if !reflect.DeepEqual(names, []string{"a", "b"}) {
		t.Errorf("SearchAs() = %v, want [a b]", names)
	}
}

func TestSearchEmptyResponseTranslatesToEmptySlice(t *testing.T) {
	transport := &fakeTransport{
		respond: func(req *TransportRequest) (*TransportResponse, error) {
			return &TransportResponse{StatusCode: http.StatusOK, Body: nil}, nil
		},
	}
	client := New(transport)
	store, _ := client.Records("users")

	records, err := store.Search(context.Background(), SearchOptions{})
	if err != nil {
		t.Fatalf("Search() returned error: %v", err)
	}
	if records == nil {
		t.Error("Expected an empty slice, not nil")
	}
	if len(records) != 0 {
		t.Errorf("Expected no records, got %d", len(records))
	}
}

func TestConcurrentSearchesCoalesce(t *testing.T) {
	release := make(chan struct{})
	var inflight sync.WaitGroup
	transport := &fakeTransport{
		respond: func(req *TransportRequest) (*TransportResponse, error) {
			<-release
			return &TransportResponse{
				StatusCode: http.StatusOK,
				Body:       []byte(`{"custom_object_records":[]}`),
			}, nil
		},
	}
	client := New(transport)
	store, _ := client.Records("users")

	const numCalls = 5
	errs := make([]error, numCalls)
	for i := 0; i < numCalls; i++ {
		inflight.Add(1)
		go func(index int) {
			defer inflight.Done()
			_, errs[index] = store.Search(context.Background(), SearchOptions{})
		}(i)
	}

	// Let the goroutines pile up on the in-flight fetch, then release it.
	time.Sleep(50 * time.Millisecond)
	close(release)
	inflight.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("Search %d returned error: %v", i, err)
		}
	}
	if transport.calls() != 1 {
		t.Errorf("Concurrent identical searches should coalesce into one request, got %d", transport.calls())
	}
}
