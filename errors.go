package zenobjects

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Error type identifiers carried by ClientError.Type.
const (
	// ErrorTypeConfig marks caller configuration errors: missing or blank
	// resource keys, mutually exclusive search options, missing required
	// mutation fields. These fail synchronously before any I/O.
	ErrorTypeConfig = "Config"

	// ErrorTypeTransport marks network or host failures that never produced
	// an HTTP status.
	ErrorTypeTransport = "Transport"

	// ErrorTypeRemote marks responses carrying an HTTP error status. The
	// status code and raw body are preserved on the error.
	ErrorTypeRemote = "Remote"

	// ErrorTypeValidation marks invalid client construction options.
	ErrorTypeValidation = "Validation"
)

// Sentinel errors for common failure scenarios.
var (
	// ErrNoTransport is reported when a client is built without a transport.
	ErrNoTransport = errors.New("zenobjects: transport is required")

	// ErrSecureChannelRequired is returned when a request demands a secure
	// channel but the transport's base URL is not https.
	ErrSecureChannelRequired = errors.New("zenobjects: secure channel required")
)

// ClientError is the error type reported for configuration, transport and
// remote failures. Remote failures keep the HTTP status code and raw response
// body so callers can inspect structured error detail.
type ClientError struct {
	Type       string
	Message    string
	Resource   string
	Method     string
	URL        string
	StatusCode int
	Body       []byte
	RequestID  string
	Cause      error
	Timestamp  time.Time
	Duration   time.Duration
}

// Error implements the error interface.
func (e *ClientError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.Resource != "" {
		msg = fmt.Sprintf("%s (resource %q)", msg, e.Resource)
	}
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.RequestID != "" {
		msg = fmt.Sprintf("[%s] %s", e.RequestID, msg)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ClientError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is compares error types for errors.Is.
func (e *ClientError) Is(target error) bool {
	if e == nil {
		return false
	}
	if targetErr, ok := target.(*ClientError); ok {
		return e.Type == targetErr.Type
	}
	return false
}

// IsConfig reports whether err is a caller configuration error.
func IsConfig(err error) bool {
	return isErrorType(err, ErrorTypeConfig)
}

// IsTransport reports whether err is a transport-level failure (no HTTP status).
func IsTransport(err error) bool {
	return isErrorType(err, ErrorTypeTransport)
}

// IsRemote reports whether err carries an HTTP error status from the remote.
func IsRemote(err error) bool {
	return isErrorType(err, ErrorTypeRemote)
}

// IsNotFound reports whether err is a remote 404 for the requested record.
func IsNotFound(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrorTypeRemote && clientErr.StatusCode == http.StatusNotFound
	}
	return false
}

func isErrorType(err error, errorType string) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == errorType
	}
	return false
}

// DebugInfo renders a multi-line string with diagnostic context.
func (e *ClientError) DebugInfo() string {
	if e == nil {
		return "Error: <nil>"
	}
	info := fmt.Sprintf("Error Type: %s\n", e.Type)
	info += fmt.Sprintf("Message: %s\n", e.Message)
	if e.RequestID != "" {
		info += fmt.Sprintf("Request ID: %s\n", e.RequestID)
	}
	if e.Resource != "" {
		info += fmt.Sprintf("Resource: %s\n", e.Resource)
	}
	if e.Method != "" {
		info += fmt.Sprintf("Method: %s\n", e.Method)
	}
	if e.URL != "" {
		info += fmt.Sprintf("URL: %s\n", e.URL)
	}
	if e.StatusCode > 0 {
		info += fmt.Sprintf("Status Code: %d\n", e.StatusCode)
	}
	if len(e.Body) > 0 {
		info += fmt.Sprintf("Body: %s\n", string(e.Body))
	}
	if !e.Timestamp.IsZero() {
		info += fmt.Sprintf("Timestamp: %s\n", e.Timestamp.Format(time.RFC3339))
	}
	if e.Duration > 0 {
		info += fmt.Sprintf("Duration: %v\n", e.Duration)
	}
	if e.Cause != nil {
		info += fmt.Sprintf("Cause: %v\n", e.Cause)
	}
	return info
}

func newConfigError(resource, message string) *ClientError {
	return &ClientError{
		Type:      ErrorTypeConfig,
		Message:   message,
		Resource:  resource,
		Timestamp: time.Now(),
	}
}
