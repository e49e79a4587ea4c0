// Package services contains the typed endpoint services of the client. Each
// service composes the transport, the retrier, the session store and the
// entity cache into named operations; none of them owns state of its own.
//
// Retry decisions live here, not in the retrier: reads and naturally
// idempotent writes (PUT, DELETE, logout) are marked idempotent, votes are
// re-attempted only on transport-level failures, and non-idempotent writes
// (register, create, like toggle) are sent exactly once.
package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/avolkovs/threadly/internal/client/api"
	"github.com/avolkovs/threadly/internal/client/models"
)

// call runs one request through the retrier/transport pair.
func call(ctx context.Context, c *api.Client, r *api.Retrier, req api.Request) (*api.Response, error) {
	return r.Do(ctx, req.Idempotent, func(ctx context.Context) (*api.Response, error) {
		return c.Do(ctx, req)
	})
}

// decodeList accepts both list envelopes the backend has used over time:
// a paginated object {"data":[...],...} or a bare JSON array.
func decodeList[T any](data json.RawMessage, out *models.Paginated[T]) error {
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, &out.Data)
	}
	return json.Unmarshal(data, out)
}

// decodeWrapped unmarshals an entity that may arrive bare or under a
// single-key envelope such as {"post": {...}}.
func decodeWrapped[T any](data json.RawMessage, key string, out *T) error {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err == nil {
		if raw, ok := envelope[key]; ok {
			return json.Unmarshal(raw, out)
		}
	}
	return json.Unmarshal(data, out)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func jsonField(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode form field: %w", err)
	}
	return string(data), nil
}
