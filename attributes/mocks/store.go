// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"

	"github.com/absmach/edgesync/attributes"
	"github.com/absmach/edgesync/entities"
	"github.com/absmach/edgesync/pkg/future"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/mock"
)

var _ attributes.Store = (*Store)(nil)

// Store resolves Save futures with the error configured through Return.
type Store struct {
	mock.Mock
}

func (m *Store) Save(ctx context.Context, tenantID uuid.UUID, entity entities.EntityID, scope string, kvs []attributes.KeyValue) *future.Future {
	ret := m.Called(ctx, tenantID, entity, scope, kvs)
	if f, ok := ret.Get(0).(*future.Future); ok {
		return f
	}
	return future.Failed(ret.Error(0))
}

func (m *Store) RemoveAll(ctx context.Context, tenantID uuid.UUID, entity entities.EntityID, scope string, keys []string) error {
	ret := m.Called(ctx, tenantID, entity, scope, keys)
	return ret.Error(0)
}
