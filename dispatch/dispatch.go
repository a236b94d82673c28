// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package dispatch hands canonical messages to the rule engine and tracks
// their outcomes.
package dispatch

import (
	"context"
	"fmt"

	"github.com/absmach/edgesync/cluster"
	"github.com/absmach/edgesync/logger"
	"github.com/absmach/edgesync/pkg/errors"
	"github.com/absmach/edgesync/pkg/future"
	"github.com/absmach/edgesync/pkg/messaging"
	"github.com/absmach/edgesync/queue"
	"github.com/gofrs/uuid"
)

// Coordinator dispatches messages and reports one outcome per message.
type Coordinator interface {
	// Dispatch sends msg and returns the future of its outcome.
	Dispatch(ctx context.Context, tenantID uuid.UUID, msg messaging.Message) *future.Future

	// DispatchAll sends every message and returns a future that succeeds
	// when all sends succeed or fails with the first failure observed.
	DispatchAll(ctx context.Context, tenantID uuid.UUID, msgs []messaging.Message) *future.Future
}

var _ Coordinator = (*coordinator)(nil)

type coordinator struct {
	cluster cluster.Service
	logger  logger.Logger
}

// New returns a dispatch coordinator pushing through the cluster service.
func New(cluster cluster.Service, logger logger.Logger) Coordinator {
	return &coordinator{
		cluster: cluster,
		logger:  logger,
	}
}

func (c *coordinator) Dispatch(ctx context.Context, tenantID uuid.UUID, msg messaging.Message) *future.Future {
	f := future.New()
	c.cluster.PushToRuleEngine(ctx, tenantID, msg.Originator, msg, &callback{
		future: f,
		onFailure: func(err error) {
			c.logger.Error(fmt.Sprintf("Can't process %s message %s of %s: %s", msg.Type, msg.ID, msg.Originator, err))
		},
	})
	return f
}

func (c *coordinator) DispatchAll(ctx context.Context, tenantID uuid.UUID, msgs []messaging.Message) *future.Future {
	futures := make([]*future.Future, len(msgs))
	for i, msg := range msgs {
		futures[i] = c.Dispatch(ctx, tenantID, msg)
	}
	return future.AllOf(futures...)
}

// callback completes its future with the first outcome reported by the
// transport. Later outcomes are dropped.
type callback struct {
	future    *future.Future
	onFailure func(err error)
}

var _ queue.Callback = (*callback)(nil)

func (cb *callback) OnSuccess(queue.Metadata) {
	cb.future.Complete(nil)
}

func (cb *callback) OnFailure(err error) {
	if cb.future.Complete(errors.Wrap(errors.ErrDispatch, err)) {
		cb.onFailure(err)
	}
}
