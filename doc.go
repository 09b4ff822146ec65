// Package zenobjects is a caching client for the Zendesk custom objects
// records API:
//
//   - CRUD record stores per custom object type (search / create / update / delete)
//   - In‑memory read cache with a staleness window and tag‑scoped invalidation
//   - Invalidation signal channels so active readers learn about writes
//   - Coalescing of concurrent identical searches (single flight)
//   - Pluggable transport with middleware (auth, tracing, etc.)
//   - Prometheus metrics and lightweight structured debug logging
//
// Design goals:
//   - Small surface area – functional options configure everything
//   - Explicit dependency injection: the transport is a constructor argument,
//     never ambient global state
//   - Safe concurrent use of a single *Client instance
//   - Extensibility via user supplied middleware & pluggable cache / metrics
//
// Typical usage:
//
//	transport, _ := zenobjects.NewHTTPTransport("https://acme.zendesk.com",
//	    zenobjects.WithTransportMiddleware(zenobjects.OAuth2Middleware(tokenSource)),
//	)
//	client := zenobjects.New(transport,
//	    zenobjects.WithStaleTTL(time.Minute),
//	    zenobjects.WithMetrics(),
//	)
//	assets, err := client.Records("assets")
//	records, err := assets.Search(ctx, zenobjects.SearchOptions{
//	    SearchBy: &zenobjects.SearchBy{By: "status", Value: "active"},
//	})
//
// Mutations invalidate the resource's cached searches, so the next Search
// fetches fresh data. Subscribe to invalidation signals with Updates() to
// refetch eagerly instead of lazily.
package zenobjects
