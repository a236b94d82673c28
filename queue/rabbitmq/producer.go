// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package rabbitmq holds the queue producer backed by a RabbitMQ topic
// exchange with publisher confirms.
package rabbitmq

import (
	"context"
	"errors"
	"sync"

	"github.com/absmach/edgesync/queue"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	exchangeName = "edgesync"
	appID        = "edgesync-producer"
)

var (
	// ErrEmptyTopic is returned when the destination carries no topic.
	ErrEmptyTopic = errors.New("empty topic")

	// ErrNack is reported when the broker refuses a message.
	ErrNack = errors.New("message was not acknowledged by the broker")
)

var _ queue.Producer = (*producer)(nil)

type producer struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewProducer returns a RabbitMQ queue producer. The channel is put into
// confirm mode so every send is completed by a broker ack or nack.
func NewProducer(url string) (queue.Producer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchangeName, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.Confirm(false); err != nil {
		conn.Close()
		return nil, err
	}

	return &producer{
		conn:     conn,
		channel:  ch,
		exchange: exchangeName,
	}, nil
}

func (p *producer) Send(ctx context.Context, tpi queue.TopicPartition, msg queue.Msg, cb queue.Callback) {
	if tpi.Topic == "" {
		queue.Nack(cb, ErrEmptyTopic)
		return
	}

	headers := amqp.Table{
		queue.TenantHeader:    tpi.TenantID.String(),
		queue.PartitionHeader: int32(tpi.Partition),
	}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	routingKey := tpi.FullTopicName()

	// Deferred confirmations are matched to publishings by delivery tag,
	// so publishing must be serialized on the channel.
	p.mu.Lock()
	dc, err := p.channel.PublishWithDeferredConfirmWithContext(
		ctx,
		p.exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			Headers:      headers,
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    msg.Key.String(),
			AppId:        appID,
			Body:         msg.Value,
		})
	p.mu.Unlock()
	if err != nil {
		queue.Nack(cb, err)
		return
	}

	go func() {
		<-dc.Done()
		if !dc.Acked() {
			queue.Nack(cb, ErrNack)
			return
		}
		queue.Ack(cb, queue.Metadata{Topic: routingKey, Partition: tpi.Partition, Offset: int64(dc.DeliveryTag)})
	}()
}

func (p *producer) Close() error {
	if err := p.channel.Close(); err != nil {
		return err
	}
	return p.conn.Close()
}
