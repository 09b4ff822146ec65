package zenobjects

import (
	"fmt"
	"strings"
	"time"
)

// WithTimeout sets the per-request transport timeout (default 15s).
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithStaleTTL sets the window within which cached search results are served
// without refetching (default one minute).
func WithStaleTTL(d time.Duration) Option {
	return func(c *Client) {
		c.staleTTL = d
	}
}

// WithBaseEndpoint overrides the fixed API path prefix.
func WithBaseEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.baseEndpoint = strings.TrimSuffix(endpoint, "/")
	}
}

// WithInsecureTransport drops the secure channel requirement so the client
// can talk to plain HTTP endpoints. Intended for local development only.
func WithInsecureTransport() Option {
	return func(c *Client) {
		c.allowInsecure = true
	}
}

// WithCustomCache sets a custom cache implementation.
func WithCustomCache(cache RecordCache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithMetrics enables Prometheus metrics collection on the default registerer.
func WithMetrics() Option {
	return func(c *Client) {
		c.metrics = NewMetricsCollector()
	}
}

// WithMetricsCollector sets a custom metrics collector.
func WithMetricsCollector(collector *MetricsCollector) Option {
	return func(c *Client) {
		c.metrics = collector
	}
}

// WithDebug enables debug logging with default configuration.
func WithDebug() Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
	}
}

// WithDebugConfig sets custom debug configuration.
func WithDebugConfig(config *DebugConfig) Option {
	return func(c *Client) {
		c.debug = config
	}
}

// WithLogger sets a custom logger for debug output.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithSimpleLogger enables debug logging with a simple console logger.
func WithSimpleLogger() Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
		c.logger = NewSimpleLogger()
	}
}

// WithRequestIDGenerator sets a custom function for generating request IDs.
func WithRequestIDGenerator(gen func() string) Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.RequestIDGen = gen
	}
}

// ValidateConfiguration validates the client configuration and returns an
// error if invalid.
func (c *Client) ValidateConfiguration() error {
	var errs []string

	errs = append(errs, c.validateTransportConfig()...)
	errs = append(errs, c.validateCacheConfig()...)
	errs = append(errs, c.validateDebugConfig()...)
	errs = append(errs, c.validateExtremeValues()...)

	if len(errs) > 0 {
		return &ClientError{
			Type:    ErrorTypeValidation,
			Message: "configuration validation failed",
			Cause:   fmt.Errorf("validation errors: %v", errs),
		}
	}

	return nil
}

func (c *Client) validateTransportConfig() []string {
	var errs []string

	if c.transport == nil {
		errs = append(errs, ErrNoTransport.Error())
	}
	if c.timeout <= 0 {
		errs = append(errs, "timeout must be positive")
	}
	if strings.TrimSpace(c.baseEndpoint) == "" {
		errs = append(errs, "base endpoint must not be empty")
	}

	return errs
}

func (c *Client) validateCacheConfig() []string {
	var errs []string

	if c.cache == nil {
		errs = append(errs, "cache cannot be nil")
	}
	if c.staleTTL <= 0 {
		errs = append(errs, "staleTTL must be positive")
	}

	return errs
}

func (c *Client) validateDebugConfig() []string {
	var errs []string

	if c.debug != nil && c.debug.Enabled {
		if c.debug.RequestIDGen == nil {
			errs = append(errs, "debug RequestIDGen must be set when debug is enabled")
		}
		if c.logger == nil {
			errs = append(errs, "logger must be set when debug is enabled")
		}
	}

	return errs
}

func (c *Client) validateExtremeValues() []string {
	var errs []string

	if c.timeout > 10*time.Minute {
		errs = append(errs, "timeout > 10m may cause requests to hang for too long")
	}
	if c.staleTTL > 24*time.Hour {
		errs = append(errs, "staleTTL > 24h may cause stale data issues")
	}

	return errs
}
