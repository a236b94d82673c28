// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package queue defines the contract of the partitioned queue transport
// consumed by the rule engine and the core services.
package queue

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"
)

// ServiceType selects the family of topics a message is sent to.
type ServiceType string

const (
	ServiceCore       ServiceType = "tb_core"
	ServiceRuleEngine ServiceType = "tb_rule_engine"
)

// MainQueue is the rule-engine queue used when a route names none.
const MainQueue = "main"

// Header keys set on every produced message.
const (
	TenantHeader    = "tenantId"
	PartitionHeader = "partition"
)

// TopicPartition identifies the destination of a message.
type TopicPartition struct {
	ServiceType ServiceType
	TenantID    uuid.UUID
	Topic       string
	Partition   int
}

// FullTopicName returns the partition-qualified topic name.
func (tp TopicPartition) FullTopicName() string {
	return fmt.Sprintf("%s.%d", tp.Topic, tp.Partition)
}

// Msg is the transport-level message.
type Msg struct {
	Key     uuid.UUID
	Value   []byte
	Headers map[string]string
}

// Metadata describes an accepted message.
type Metadata struct {
	Topic     string
	Partition int
	Offset    int64
}

// Callback receives the outcome of a send. Exactly one of the methods is
// called once per message.
type Callback interface {
	OnSuccess(md Metadata)
	OnFailure(err error)
}

// CallbackFuncs adapts a pair of functions to Callback. Nil functions are
// skipped.
type CallbackFuncs struct {
	Success func(md Metadata)
	Failure func(err error)
}

var _ Callback = CallbackFuncs{}

func (cb CallbackFuncs) OnSuccess(md Metadata) {
	if cb.Success != nil {
		cb.Success(md)
	}
}

func (cb CallbackFuncs) OnFailure(err error) {
	if cb.Failure != nil {
		cb.Failure(err)
	}
}

// Producer sends messages to topic partitions.
//
//go:generate mockery --name Producer --output=./mocks --filename producer.go --quiet --note "Copyright (c) Abstract Machines"
type Producer interface {
	// Send hands msg to the transport without blocking on the outcome.
	// The callback may be nil, in which case the outcome is discarded.
	Send(ctx context.Context, tpi TopicPartition, msg Msg, cb Callback)

	// Close gracefully closes the producer connection.
	Close() error
}

// PartitionService maps a (tenant, entity) pair to a topic partition.
type PartitionService interface {
	Resolve(st ServiceType, queueName string, tenantID, entityID uuid.UUID) TopicPartition
}

// Ack reports success to cb when cb is set.
func Ack(cb Callback, md Metadata) {
	if cb != nil {
		cb.OnSuccess(md)
	}
}

// Nack reports failure to cb when cb is set.
func Nack(cb Callback, err error) {
	if cb != nil {
		cb.OnFailure(err)
	}
}
