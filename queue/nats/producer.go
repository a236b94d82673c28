// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package nats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/absmach/edgesync/logger"
	"github.com/absmach/edgesync/queue"
	broker "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	// A maximum number of reconnect attempts before NATS connection closes permanently.
	// Value -1 represents an unlimited number of reconnect retries, i.e. the client
	// will never give up on retrying to re-establish connection to NATS server.
	maxReconnects = -1

	maxPending   = 4096
	closeTimeout = 5 * time.Second

	keyHeader = "key"
)

// ErrEmptyTopic is returned when the destination carries no topic.
var ErrEmptyTopic = errors.New("empty topic")

var streamConfig = jetstream.StreamConfig{
	Name:              "edgesync",
	Description:       "Stream of rule engine and core messages produced on behalf of edges",
	Retention:         jetstream.LimitsPolicy,
	MaxMsgsPerSubject: 1e6,
	MaxAge:            time.Hour * 24,
	MaxMsgSize:        1024 * 1024,
	Discard:           jetstream.DiscardOld,
	Storage:           jetstream.FileStorage,
}

var _ queue.Producer = (*producer)(nil)

type producer struct {
	conn   *broker.Conn
	js     jetstream.JetStream
	logger logger.Logger
}

// NewProducer returns a JetStream backed queue producer. The stream is
// created for the given subjects when it does not exist.
func NewProducer(ctx context.Context, url string, subjects []string, logger logger.Logger) (queue.Producer, error) {
	conn, err := broker.Connect(url, broker.MaxReconnects(maxReconnects))
	if err != nil {
		return nil, err
	}
	js, err := jetstream.New(conn, jetstream.WithPublishAsyncMaxPending(maxPending))
	if err != nil {
		conn.Close()
		return nil, err
	}
	cfg := streamConfig
	cfg.Subjects = subjects
	if _, err := js.CreateOrUpdateStream(ctx, cfg); err != nil {
		conn.Close()
		return nil, err
	}

	return &producer{
		conn:   conn,
		js:     js,
		logger: logger,
	}, nil
}

func (p *producer) Send(ctx context.Context, tpi queue.TopicPartition, msg queue.Msg, cb queue.Callback) {
	if tpi.Topic == "" {
		queue.Nack(cb, ErrEmptyTopic)
		return
	}

	m := broker.NewMsg(tpi.FullTopicName())
	m.Data = msg.Value
	m.Header.Set(keyHeader, msg.Key.String())
	m.Header.Set(queue.TenantHeader, tpi.TenantID.String())
	for k, v := range msg.Headers {
		m.Header.Set(k, v)
	}

	ack, err := p.js.PublishMsgAsync(m)
	if err != nil {
		queue.Nack(cb, err)
		return
	}

	go func() {
		select {
		case pa := <-ack.Ok():
			queue.Ack(cb, queue.Metadata{Topic: m.Subject, Partition: tpi.Partition, Offset: int64(pa.Sequence)})
		case err := <-ack.Err():
			p.logger.Warn(fmt.Sprintf("JetStream rejected message on %s: %s", m.Subject, err))
			queue.Nack(cb, err)
		}
	}()
}

func (p *producer) Close() error {
	select {
	case <-p.js.PublishAsyncComplete():
	case <-time.After(closeTimeout):
		p.logger.Warn(fmt.Sprintf("Closing producer with %d unacknowledged messages", p.js.PublishAsyncPending()))
	}
	p.conn.Close()
	return nil
}
