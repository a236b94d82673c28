// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package uplink converts persisted cloud events into envelopes sent to the
// edge.
package uplink

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofrs/uuid"
)

// ActionType names what happened to the entity of a cloud event.
type ActionType string

const (
	Added                       ActionType = "ADDED"
	Deleted                     ActionType = "DELETED"
	Updated                     ActionType = "UPDATED"
	PostAttributes              ActionType = "POST_ATTRIBUTES"
	AttributesUpdated           ActionType = "ATTRIBUTES_UPDATED"
	AttributesDeleted           ActionType = "ATTRIBUTES_DELETED"
	TimeseriesUpdated           ActionType = "TIMESERIES_UPDATED"
	CredentialsUpdated          ActionType = "CREDENTIALS_UPDATED"
	AssignedToCustomer          ActionType = "ASSIGNED_TO_CUSTOMER"
	UnassignedFromCustomer      ActionType = "UNASSIGNED_FROM_CUSTOMER"
	RelationAddOrUpdate         ActionType = "RELATION_ADD_OR_UPDATE"
	RelationDeleted             ActionType = "RELATION_DELETED"
	RPCCall                     ActionType = "RPC_CALL"
	AlarmAck                    ActionType = "ALARM_ACK"
	AlarmClear                  ActionType = "ALARM_CLEAR"
	AssignedToEdge              ActionType = "ASSIGNED_TO_EDGE"
	UnassignedFromEdge          ActionType = "UNASSIGNED_FROM_EDGE"
	CredentialsRequest          ActionType = "CREDENTIALS_REQUEST"
	EntityMergeRequest          ActionType = "ENTITY_MERGE_REQUEST"
	AttributesRequest           ActionType = "ATTRIBUTES_REQUEST"
	RuleChainMetadataRequest    ActionType = "RULE_CHAIN_METADATA_REQUEST"
	RelationRequest             ActionType = "RELATION_REQUEST"
	WidgetBundleTypesRequest    ActionType = "WIDGET_BUNDLE_TYPES_REQUEST"
	EntityViewRequest           ActionType = "ENTITY_VIEW_REQUEST"
	DeviceProfileDevicesRequest ActionType = "DEVICE_PROFILE_DEVICES_REQUEST"
)

var actions = map[ActionType]bool{
	Added: true, Deleted: true, Updated: true, PostAttributes: true,
	AttributesUpdated: true, AttributesDeleted: true, TimeseriesUpdated: true,
	CredentialsUpdated: true, AssignedToCustomer: true, UnassignedFromCustomer: true,
	RelationAddOrUpdate: true, RelationDeleted: true, RPCCall: true, AlarmAck: true,
	AlarmClear: true, AssignedToEdge: true, UnassignedFromEdge: true,
	CredentialsRequest: true, EntityMergeRequest: true, AttributesRequest: true,
	RuleChainMetadataRequest: true, RelationRequest: true, WidgetBundleTypesRequest: true,
	EntityViewRequest: true, DeviceProfileDevicesRequest: true,
}

// Valid reports whether a is a known action.
func (a ActionType) Valid() bool {
	return actions[a]
}

// CloudEvent is a change recorded on the cloud side waiting to be sent to
// the edge. Type is the entity type tag of the target.
type CloudEvent struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	TenantID  uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	Type      string          `json:"type" db:"type"`
	Action    ActionType      `json:"action" db:"action"`
	EntityID  uuid.UUID       `json:"entity_id" db:"entity_id"`
	Body      json.RawMessage `json:"body,omitempty" db:"body"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// EventRepository stores cloud events until they are sent.
//
//go:generate mockery --name EventRepository --output=./mocks --filename repository.go --quiet --note "Copyright (c) Abstract Machines"
type EventRepository interface {
	// Save persists a new pending event.
	Save(ctx context.Context, ev CloudEvent) error

	// RetrievePending returns up to limit unsent events, oldest first.
	RetrievePending(ctx context.Context, limit uint64) ([]CloudEvent, error)

	// MarkSent flags the given events as sent.
	MarkSent(ctx context.Context, ids ...uuid.UUID) error
}
