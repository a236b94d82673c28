// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package kafka holds the queue producer backed by Kafka. Topic partitions
// map to Kafka topic partitions one to one.
package kafka

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/absmach/edgesync/queue"
	"github.com/segmentio/kafka-go"
)

// ErrEmptyTopic is returned when the destination carries no topic.
var ErrEmptyTopic = errors.New("empty topic")

var _ queue.Producer = (*producer)(nil)

type producer struct {
	writer *kafka.Writer
}

// NewProducer returns an asynchronous Kafka queue producer. Send outcomes
// are delivered when the batch carrying the message completes.
func NewProducer(brokers ...string) queue.Producer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &partitionBalancer{},
		BatchTimeout:           5 * time.Millisecond,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		Async:                  true,
		Completion:             complete,
	}
	return &producer{writer: w}
}

func (p *producer) Send(ctx context.Context, tpi queue.TopicPartition, msg queue.Msg, cb queue.Callback) {
	if tpi.Topic == "" {
		queue.Nack(cb, ErrEmptyTopic)
		return
	}

	headers := []kafka.Header{
		{Key: queue.TenantHeader, Value: []byte(tpi.TenantID.String())},
		{Key: queue.PartitionHeader, Value: []byte(strconv.Itoa(tpi.Partition))},
	}
	for k, v := range msg.Headers {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	m := kafka.Message{
		Topic:      tpi.Topic,
		Key:        msg.Key.Bytes(),
		Value:      msg.Value,
		Headers:    headers,
		WriterData: cb,
	}
	// Async writers only fail here on invalid input or a closed writer.
	if err := p.writer.WriteMessages(ctx, m); err != nil {
		queue.Nack(cb, err)
	}
}

func (p *producer) Close() error {
	return p.writer.Close()
}

func complete(messages []kafka.Message, err error) {
	for _, m := range messages {
		cb, _ := m.WriterData.(queue.Callback)
		if err != nil {
			queue.Nack(cb, err)
			continue
		}
		queue.Ack(cb, queue.Metadata{Topic: m.Topic, Partition: m.Partition, Offset: m.Offset})
	}
}

// partitionBalancer honours the partition resolved by the partition
// service and falls back to key hashing when the topic has fewer
// partitions than configured.
type partitionBalancer struct {
	fallback kafka.Hash
}

func (b *partitionBalancer) Balance(msg kafka.Message, partitions ...int) int {
	if p, ok := headerPartition(msg); ok {
		for _, avail := range partitions {
			if avail == p {
				return p
			}
		}
	}
	return b.fallback.Balance(msg, partitions...)
}

func headerPartition(msg kafka.Message) (int, bool) {
	for _, h := range msg.Headers {
		if h.Key != queue.PartitionHeader {
			continue
		}
		p, err := strconv.Atoi(string(h.Value))
		if err != nil {
			return 0, false
		}
		return p, true
	}
	return 0, false
}
