// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"

	"github.com/absmach/edgesync/uplink"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/mock"
)

var _ uplink.EventRepository = (*EventRepository)(nil)

type EventRepository struct {
	mock.Mock
}

func (m *EventRepository) Save(ctx context.Context, ev uplink.CloudEvent) error {
	ret := m.Called(ctx, ev)
	return ret.Error(0)
}

func (m *EventRepository) RetrievePending(ctx context.Context, limit uint64) ([]uplink.CloudEvent, error) {
	ret := m.Called(ctx, limit)
	evs, _ := ret.Get(0).([]uplink.CloudEvent)
	return evs, ret.Error(1)
}

func (m *EventRepository) MarkSent(ctx context.Context, ids ...uuid.UUID) error {
	ret := m.Called(ctx, ids)
	return ret.Error(0)
}
