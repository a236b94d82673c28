// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"

	"github.com/absmach/edgesync/edge"
	"github.com/absmach/edgesync/pkg/future"
	"github.com/absmach/edgesync/telemetry"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/mock"
)

var _ telemetry.Service = (*Service)(nil)

// Service returns the futures configured through Return. Handle falls back
// to a future failed with the configured error.
type Service struct {
	mock.Mock
}

func (m *Service) Process(ctx context.Context, tenantID uuid.UUID, data edge.EntityData) ([]*future.Future, error) {
	ret := m.Called(ctx, tenantID, data)
	fs, _ := ret.Get(0).([]*future.Future)
	return fs, ret.Error(1)
}

func (m *Service) Handle(ctx context.Context, tenantID uuid.UUID, data edge.EntityData) *future.Future {
	ret := m.Called(ctx, tenantID, data)
	if f, ok := ret.Get(0).(*future.Future); ok {
		return f
	}
	return future.Failed(ret.Error(0))
}
