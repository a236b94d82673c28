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

var (
	_ routing.ProfileCache  = (*ProfileCache)(nil)
	_ routing.ProfileSource = (*ProfileSource)(nil)
)

type ProfileCache struct {
	mock.Mock
}

func (m *ProfileCache) Get(ctx context.Context, tenantID uuid.UUID, entity entities.EntityID) (routing.Profile, error) {
	ret := m.Called(ctx, tenantID, entity)
	return ret.Get(0).(routing.Profile), ret.Error(1)
}

type ProfileSource struct {
	mock.Mock
}

func (m *ProfileSource) Profile(ctx context.Context, tenantID uuid.UUID, entity entities.EntityID) (routing.Profile, error) {
	ret := m.Called(ctx, tenantID, entity)
	return ret.Get(0).(routing.Profile), ret.Error(1)
}
