// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package uplink

import (
	"context"
	"fmt"

	"github.com/absmach/edgesync/edge"
	"github.com/absmach/edgesync/logger"
	"github.com/absmach/edgesync/pkg/errors"
	"github.com/absmach/edgesync/pkg/ticker"
	"github.com/gofrs/uuid"
)

var (
	// ErrPublish indicates that an envelope could not be sent to the edge.
	ErrPublish = errors.New("failed to publish uplink message")

	errRetrieve = errors.New("failed to retrieve pending cloud events")
	errMarkSent = errors.New("failed to mark cloud events as sent")
)

// Forwarder sends pending cloud events to the edge.
type Forwarder interface {
	// Forward sends one batch of pending events and returns the number of
	// envelopes published. Events that encode to nothing are marked sent.
	Forward(ctx context.Context) (int, error)
}

var _ Forwarder = (*forwarder)(nil)

type forwarder struct {
	repo      EventRepository
	encoder   Encoder
	publisher edge.Publisher
	batchSize uint64
	logger    logger.Logger
}

// NewForwarder returns a forwarder reading batchSize events per call.
func NewForwarder(repo EventRepository, encoder Encoder, publisher edge.Publisher, batchSize uint64, logger logger.Logger) Forwarder {
	return &forwarder{
		repo:      repo,
		encoder:   encoder,
		publisher: publisher,
		batchSize: batchSize,
		logger:    logger,
	}
}

func (f *forwarder) Forward(ctx context.Context) (int, error) {
	events, err := f.repo.RetrievePending(ctx, f.batchSize)
	if err != nil {
		return 0, errors.Wrap(errRetrieve, err)
	}

	var (
		done      []uuid.UUID
		published int
		pubErr    error
	)
	for _, ev := range events {
		msg := f.encode(ev)
		if msg == nil {
			done = append(done, ev.ID)
			continue
		}
		// Stop at the first failure so that events stay in order.
		if err := f.publisher.Publish(ctx, ev.TenantID, *msg); err != nil {
			pubErr = errors.Wrap(ErrPublish, err)
			break
		}
		done = append(done, ev.ID)
		published++
	}

	if len(done) > 0 {
		if err := f.repo.MarkSent(ctx, done...); err != nil {
			return published, errors.Wrap(errMarkSent, err)
		}
	}
	if pubErr != nil {
		f.logger.Warn(fmt.Sprintf("Forwarded %d of %d cloud events: %s", published, len(events), pubErr))
	}
	return published, pubErr
}

func (f *forwarder) encode(ev CloudEvent) *edge.UplinkMsg {
	if ev.Action == AttributesRequest {
		return f.encoder.EncodeAttributesRequest(ev)
	}
	return f.encoder.EncodeChangeEvent(ev)
}

// Run calls Forward on every tick until ctx is done. Failures are logged and
// retried on the next tick.
func Run(ctx context.Context, fw Forwarder, t ticker.Ticker, logger logger.Logger) error {
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.Tick():
			n, err := fw.Forward(ctx)
			if err != nil {
				logger.Error(fmt.Sprintf("Failed to forward cloud events: %s", err))
				continue
			}
			if n > 0 {
				logger.Debug(fmt.Sprintf("Forwarded %d cloud events", n))
			}
		}
	}
}
