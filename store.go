package zenobjects

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const (
	recordsEndpoint  = "/records"
	recordByIDSuffix = "/records/{id}"
)

// Create inserts a new record. Name must be non-empty and Fields must be
// present (an empty map is a present mapping); violations fail before any
// request is issued. On success the resource's cached searches are
// invalidated before the AfterCreate hook runs. On failure the error is
// logged and returned as-is so callers can surface it without crashing.
func (s *RecordStore) Create(ctx context.Context, params CreateRecordParams) (*Record, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, newConfigError(s.resource, "record name is required")
	}
	if params.Fields == nil {
		return nil, newConfigError(s.resource, "custom object fields are required")
	}

	body := map[string]any{
		"name":                 params.Name,
		"custom_object_fields": params.Fields,
	}

	raw, err := s.client.fire(ctx, s.resource, recordsEndpoint, http.MethodPost, nil, nil, body)
	if err != nil {
		if s.client.logger != nil {
			s.client.logger.Error("Create record failed", "resource", s.resource, "error", err.Error())
		}
		return nil, err
	}

	s.client.invalidate(s.resource)
	if s.hooks.AfterCreate != nil {
		s.hooks.AfterCreate()
	}

	s.logMutation("Record created", "name", params.Name)
	return decodeRecord(raw)
}

// Update modifies an existing record. The identifier is required at call
// time; Name is included in the body only when non-empty. On success the
// OnUpdated hook receives the identifier, the resource's cached searches are
// invalidated, then AfterUpdate runs, strictly in that order. Failures are
// wrapped with the resource key while preserving the underlying cause.
func (s *RecordStore) Update(ctx context.Context, params UpdateRecordParams) (*Record, error) {
	if strings.TrimSpace(params.ID) == "" {
		return nil, newConfigError(s.resource, "record id is required")
	}
	if params.Fields == nil {
		return nil, newConfigError(s.resource, "custom object fields are required")
	}

	body := map[string]any{
		"custom_object_fields": params.Fields,
	}
	if strings.TrimSpace(params.Name) != "" {
		body["name"] = params.Name
	}

	raw, err := s.client.fire(ctx, s.resource, recordByIDSuffix, http.MethodPut, map[string]string{"id": params.ID}, nil, body)
	if err != nil {
		return nil, fmt.Errorf("zenobjects: update record in %q: %w", s.resource, err)
	}

	if s.hooks.OnUpdated != nil {
		s.hooks.OnUpdated(params.ID)
	}
	s.client.invalidate(s.resource)
	if s.hooks.AfterUpdate != nil {
		s.hooks.AfterUpdate()
	}

	s.logMutation("Record updated", "id", params.ID)
	return decodeRecord(raw)
}

// Delete removes a record by identifier, validated at call time. On success
// the OnDeleted hook runs, the resource's cached searches are invalidated,
// then AfterDelete runs, in that fixed order. Failures are wrapped with the
// resource key while preserving the underlying cause.
func (s *RecordStore) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return newConfigError(s.resource, "record id is required")
	}

	_, err := s.client.fire(ctx, s.resource, recordByIDSuffix, http.MethodDelete, map[string]string{"id": id}, nil, nil)
	if err != nil {
		return fmt.Errorf("zenobjects: delete record in %q: %w", s.resource, err)
	}

	if s.hooks.OnDeleted != nil {
		s.hooks.OnDeleted()
	}
	s.client.invalidate(s.resource)
	if s.hooks.AfterDelete != nil {
		s.hooks.AfterDelete()
	}

	s.logMutation("Record deleted", "id", id)
	return nil
}

func (s *RecordStore) logMutation(msg string, keysAndValues ...interface{}) {
	c := s.client
	if c.debug != nil && c.debug.Enabled && c.debug.LogMutations && c.logger != nil {
		args := append([]interface{}{"resource", s.resource}, keysAndValues...)
		c.logger.Info(msg, args...)
	}
}
