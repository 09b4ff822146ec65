package zenobjects

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestClientErrorError(t *testing.T) {
	err := &ClientError{
		Type:     ErrorTypeConfig,
		Message:  "resource key is required",
		Resource: "users",
	}

	msg := err.Error()
	if msg == "" {
		t.Fatal("Error() returned empty string")
	}
	for _, want := range []string{ErrorTypeConfig, "resource key is required", "users"} {
		if !contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}

func TestClientErrorNil(t *testing.T) {
	var err *ClientError
	if err.Error() != "<nil>" {
		t.Errorf("nil Error() = %q, want <nil>", err.Error())
	}
	if err.Unwrap() != nil {
		t.Error("nil Unwrap() should return nil")
	}
}

func TestClientErrorUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := &ClientError{Type: ErrorTypeTransport, Message: "request failed", Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
}

func TestClientErrorIsMatchesType(t *testing.T) {
	remote := &ClientError{Type: ErrorTypeRemote, Message: "a"}
	otherRemote := &ClientError{Type: ErrorTypeRemote, Message: "b"}
	config := &ClientError{Type: ErrorTypeConfig, Message: "c"}

	if !errors.Is(remote, otherRemote) {
		t.Error("Errors of the same type should match")
	}
	if errors.Is(remote, config) {
		t.Error("Errors of different types should not match")
	}
}

func TestClassificationHelpers(t *testing.T) {
	config := newConfigError("users", "bad input")
	transport := &ClientError{Type: ErrorTypeTransport, Message: "down"}
	remote := &ClientError{Type: ErrorTypeRemote, Message: "no", StatusCode: http.StatusNotFound}

	if !IsConfig(config) || IsConfig(transport) {
		t.Error("IsConfig misclassified")
	}
	if !IsTransport(transport) || IsTransport(remote) {
		t.Error("IsTransport misclassified")
	}
	if !IsRemote(remote) || IsRemote(config) {
		t.Error("IsRemote misclassified")
	}
	if !IsNotFound(remote) {
		t.Error("IsNotFound should match a remote 404")
	}
	if IsNotFound(&ClientError{Type: ErrorTypeRemote, StatusCode: http.StatusForbidden}) {
		t.Error("IsNotFound should not match a remote 403")
	}
}

func TestClassificationSeesThroughWrapping(t *testing.T) {
	inner := &ClientError{Type: ErrorTypeRemote, StatusCode: http.StatusNotFound}
	wrapped := fmt.Errorf("zenobjects: delete record in %q: %w", "users", inner)

	if !IsRemote(wrapped) {
		t.Error("IsRemote should unwrap")
	}
	if !IsNotFound(wrapped) {
		t.Error("IsNotFound should unwrap")
	}
}

func TestDebugInfo(t *testing.T) {
	err := &ClientError{
		Type:       ErrorTypeRemote,
		Message:    "remote returned an error status",
		Resource:   "users",
		Method:     "PUT",
		URL:        "/api/v2/custom_objects/users/records/42",
		StatusCode: 409,
		Body:       []byte(`{"error":"Conflict"}`),
	}

	info := err.DebugInfo()
	for _, want := range []string{"users", "PUT", "409", "Conflict"} {
		if !contains(info, want) {
			t.Errorf("DebugInfo() missing %q:\n%s", want, info)
		}
	}

	var nilErr *ClientError
	if nilErr.DebugInfo() != "Error: <nil>" {
		t.Errorf("nil DebugInfo() = %q", nilErr.DebugInfo())
	}
}

func contains(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
