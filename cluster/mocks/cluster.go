// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"

	"github.com/absmach/edgesync/cluster"
	"github.com/absmach/edgesync/entities"
	"github.com/absmach/edgesync/pkg/messaging"
	"github.com/absmach/edgesync/queue"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/mock"
)

var _ cluster.Service = (*Service)(nil)

// Service completes push callbacks with the error configured through
// Return(err). A Return(nil) acknowledges the push.
type Service struct {
	mock.Mock
}

func (s *Service) PushToRuleEngine(ctx context.Context, tenantID uuid.UUID, originator entities.EntityID, msg messaging.Message, cb queue.Callback) {
	ret := s.Called(ctx, tenantID, originator, msg, cb)
	complete(cb, ret.Error(0))
}

func (s *Service) PushToCore(ctx context.Context, tenantID, entityID uuid.UUID, msg cluster.CoreMsg, cb queue.Callback) {
	ret := s.Called(ctx, tenantID, entityID, msg, cb)
	complete(cb, ret.Error(0))
}

func (s *Service) PushDeviceActivity(ctx context.Context, tenantID, deviceID uuid.UUID, lastActivity int64) {
	s.Called(ctx, tenantID, deviceID, lastActivity)
}

func complete(cb queue.Callback, err error) {
	if err != nil {
		queue.Nack(cb, err)
		return
	}
	queue.Ack(cb, queue.Metadata{})
}
