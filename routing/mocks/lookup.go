// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"

	"github.com/absmach/edgesync/entities"
	"github.com/absmach/edgesync/routing"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/mock"
)

var _ routing.EntityLookup = (*EntityLookup)(nil)

type EntityLookup struct {
	mock.Mock
}

func (m *EntityLookup) Find(ctx context.Context, tenantID uuid.UUID, entity entities.EntityID) (routing.EntityInfo, error) {
	ret := m.Called(ctx, tenantID, entity)
	return ret.Get(0).(routing.EntityInfo), ret.Error(1)
}
