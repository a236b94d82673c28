// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/absmach/edgesync/queue"
	"github.com/stretchr/testify/mock"
)

// ErrPending can be returned from a configured Send to leave the callback
// uncompleted. Pending callbacks are available through Sent.
var ErrPending = errors.New("send left pending")

var _ queue.Producer = (*Producer)(nil)

// Sent is a message recorded by the Producer mock.
type Sent struct {
	TPI queue.TopicPartition
	Msg queue.Msg
	CB  queue.Callback
}

// Producer records every send and completes its callback with the error
// configured through On("Send", ...).Return(err).
type Producer struct {
	mock.Mock
	mu   sync.Mutex
	sent []Sent
}

func (p *Producer) Send(ctx context.Context, tpi queue.TopicPartition, msg queue.Msg, cb queue.Callback) {
	p.mu.Lock()
	p.sent = append(p.sent, Sent{TPI: tpi, Msg: msg, CB: cb})
	p.mu.Unlock()

	ret := p.Called(ctx, tpi, msg, cb)
	switch err := ret.Error(0); {
	case errors.Is(err, ErrPending):
	case err != nil:
		queue.Nack(cb, err)
	default:
		queue.Ack(cb, queue.Metadata{Topic: tpi.FullTopicName(), Partition: tpi.Partition})
	}
}

func (p *Producer) Close() error {
	ret := p.Called()
	return ret.Error(0)
}

// Sent returns the recorded sends in call order.
func (p *Producer) Sent() []Sent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Sent(nil), p.sent...)
}
