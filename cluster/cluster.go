// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package cluster sends edge originated messages to the rule engine and the
// core services through the partitioned queue.
package cluster

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/absmach/edgesync/entities"
	"github.com/absmach/edgesync/logger"
	"github.com/absmach/edgesync/pkg/errors"
	"github.com/absmach/edgesync/pkg/messaging"
	"github.com/absmach/edgesync/queue"
	"github.com/gofrs/uuid"
)

const typeHeader = "type"

// DeviceActivity reports that a device was seen by its edge.
type DeviceActivity struct {
	TenantID         uuid.UUID `json:"tenantId"`
	DeviceID         uuid.UUID `json:"deviceId"`
	LastActivityTime int64     `json:"lastActivityTime"`
}

// DeviceAttributesEvent tells the core that device attributes changed.
type DeviceAttributesEvent struct {
	TenantID uuid.UUID `json:"tenantId"`
	DeviceID uuid.UUID `json:"deviceId"`
	Scope    string    `json:"scope"`
	Keys     []string  `json:"keys"`
	Deleted  bool      `json:"deleted"`
}

// AttributesDeleted returns the notification for removed device attributes.
func AttributesDeleted(tenantID, deviceID uuid.UUID, scope string, keys []string) DeviceAttributesEvent {
	return DeviceAttributesEvent{
		TenantID: tenantID,
		DeviceID: deviceID,
		Scope:    scope,
		Keys:     keys,
		Deleted:  true,
	}
}

// CoreMsg is the envelope of messages consumed by the core services. Only
// one field is set.
type CoreMsg struct {
	DeviceActivity  *DeviceActivity        `json:"deviceActivityMsg,omitempty"`
	AttributesEvent *DeviceAttributesEvent `json:"deviceAttributesEventMsg,omitempty"`
}

func (m CoreMsg) kind() string {
	switch {
	case m.DeviceActivity != nil:
		return "deviceActivity"
	case m.AttributesEvent != nil:
		return "deviceAttributesEvent"
	default:
		return "unknown"
	}
}

// Service pushes messages to the cluster queues.
type Service interface {
	// PushToRuleEngine sends msg to the rule engine partition of originator.
	PushToRuleEngine(ctx context.Context, tenantID uuid.UUID, originator entities.EntityID, msg messaging.Message, cb queue.Callback)

	// PushToCore sends msg to the core partition of the given entity.
	PushToCore(ctx context.Context, tenantID, entityID uuid.UUID, msg CoreMsg, cb queue.Callback)

	// PushDeviceActivity reports device activity without waiting on the outcome.
	PushDeviceActivity(ctx context.Context, tenantID, deviceID uuid.UUID, lastActivity int64)
}

var _ Service = (*clusterService)(nil)

type clusterService struct {
	partitions queue.PartitionService
	producer   queue.Producer
	logger     logger.Logger
}

// New returns a cluster service sending through producer.
func New(partitions queue.PartitionService, producer queue.Producer, logger logger.Logger) Service {
	return &clusterService{
		partitions: partitions,
		producer:   producer,
		logger:     logger,
	}
}

func (cs *clusterService) PushToRuleEngine(ctx context.Context, tenantID uuid.UUID, originator entities.EntityID, msg messaging.Message, cb queue.Callback) {
	data, err := json.Marshal(msg)
	if err != nil {
		queue.Nack(cb, errors.Wrap(errors.ErrEncode, err))
		return
	}
	tpi := cs.partitions.Resolve(queue.ServiceRuleEngine, msg.QueueName, tenantID, originator.ID)
	cs.logger.Debug(fmt.Sprintf("Pushing %s message %s of %s to %s", msg.Type, msg.ID, originator, tpi.FullTopicName()))

	cs.producer.Send(ctx, tpi, queue.Msg{
		Key:     originator.ID,
		Value:   data,
		Headers: map[string]string{typeHeader: string(msg.Type)},
	}, cb)
}

func (cs *clusterService) PushToCore(ctx context.Context, tenantID, entityID uuid.UUID, msg CoreMsg, cb queue.Callback) {
	data, err := json.Marshal(msg)
	if err != nil {
		queue.Nack(cb, errors.Wrap(errors.ErrEncode, err))
		return
	}
	tpi := cs.partitions.Resolve(queue.ServiceCore, "", tenantID, entityID)

	cs.producer.Send(ctx, tpi, queue.Msg{
		Key:     entityID,
		Value:   data,
		Headers: map[string]string{typeHeader: msg.kind()},
	}, cb)
}

func (cs *clusterService) PushDeviceActivity(ctx context.Context, tenantID, deviceID uuid.UUID, lastActivity int64) {
	msg := CoreMsg{DeviceActivity: &DeviceActivity{
		TenantID:         tenantID,
		DeviceID:         deviceID,
		LastActivityTime: lastActivity,
	}}
	cs.PushToCore(ctx, tenantID, deviceID, msg, queue.CallbackFuncs{
		Failure: func(err error) {
			cs.logger.Warn(fmt.Sprintf("Failed to report activity of device %s: %s", deviceID, err))
		},
	})
}
