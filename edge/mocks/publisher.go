// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"

	"github.com/absmach/edgesync/edge"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/mock"
)

var _ edge.Publisher = (*Publisher)(nil)

type Publisher struct {
	mock.Mock
}

func (m *Publisher) Publish(ctx context.Context, tenantID uuid.UUID, msg edge.UplinkMsg) error {
	ret := m.Called(ctx, tenantID, msg)
	return ret.Error(0)
}

func (m *Publisher) Close() error {
	ret := m.Called()
	return ret.Error(0)
}
