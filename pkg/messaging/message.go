// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package messaging holds the canonical message handed to the rule engine.
package messaging

import (
	"github.com/absmach/edgesync/entities"
	"github.com/gofrs/uuid"
)

// MsgType names the kind of request a canonical message carries.
type MsgType string

const (
	PostTelemetryRequest  MsgType = "POST_TELEMETRY_REQUEST"
	PostAttributesRequest MsgType = "POST_ATTRIBUTES_REQUEST"
	AttributesUpdated     MsgType = "ATTRIBUTES_UPDATED"
)

// Well-known metadata keys and values.
const (
	SourceKey   = "source"
	CloudSource = "cloud"
	ScopeKey    = "scope"
	TsKey       = "ts"
)

// Message is the canonical rule-engine message.
type Message struct {
	ID          string            `json:"id"`
	Ts          int64             `json:"ts"`
	Type        MsgType           `json:"type"`
	Originator  entities.EntityID `json:"originator"`
	CustomerID  uuid.UUID         `json:"customerId"`
	Metadata    *Metadata         `json:"metadata"`
	Data        string            `json:"data"`
	QueueName   string            `json:"queueName,omitempty"`
	RuleChainID *uuid.UUID        `json:"ruleChainId,omitempty"`
}
