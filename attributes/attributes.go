// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package attributes defines the store of entity attributes.
package attributes

import (
	"context"

	"github.com/absmach/edgesync/entities"
	"github.com/absmach/edgesync/pkg/future"
	"github.com/gofrs/uuid"
)

// Attribute scopes.
const (
	ClientScope = "CLIENT_SCOPE"
	ServerScope = "SERVER_SCOPE"
	SharedScope = "SHARED_SCOPE"
)

// ValidScope reports whether scope names a known attribute scope.
func ValidScope(scope string) bool {
	switch scope {
	case ClientScope, ServerScope, SharedScope:
		return true
	default:
		return false
	}
}

// KeyValue is a stored attribute. Value holds a bool, int64, float64,
// string or json.RawMessage.
type KeyValue struct {
	Key          string
	Value        interface{}
	LastUpdateTS int64
}

// Store persists entity attributes.
//
//go:generate mockery --name Store --output=./mocks --filename store.go --quiet --note "Copyright (c) Abstract Machines"
type Store interface {
	// Save upserts kvs into the scope of entity. The write completes
	// asynchronously through the returned future.
	Save(ctx context.Context, tenantID uuid.UUID, entity entities.EntityID, scope string, kvs []KeyValue) *future.Future

	// RemoveAll deletes the named attributes from the scope of entity.
	RemoveAll(ctx context.Context, tenantID uuid.UUID, entity entities.EntityID, scope string, keys []string) error
}
