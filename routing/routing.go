// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package routing resolves the routing context and the rule engine target
// of messages originated by an entity.
package routing

import (
	"context"

	"github.com/absmach/edgesync/entities"
	"github.com/absmach/edgesync/pkg/messaging"
	"github.com/gofrs/uuid"
)

// EntityInfo is the part of an entity record used for routing.
type EntityInfo struct {
	CustomerID uuid.UUID
	Name       string
	Type       string
}

// EntityLookup finds entities by id. Missing entities are reported with
// errors.ErrNotFound.
type EntityLookup interface {
	Find(ctx context.Context, tenantID uuid.UUID, entity entities.EntityID) (EntityInfo, error)
}

// Profile holds the routing defaults of a device or asset profile.
type Profile struct {
	ID                 uuid.UUID  `json:"id"`
	DefaultRuleChainID *uuid.UUID `json:"defaultRuleChainId,omitempty"`
	DefaultQueueName   string     `json:"defaultQueueName,omitempty"`
}

// ProfileCache returns the profile bound to an entity. Missing profiles are
// reported with errors.ErrNotFound.
type ProfileCache interface {
	Get(ctx context.Context, tenantID uuid.UUID, entity entities.EntityID) (Profile, error)
}

// ProfileSource is the authoritative store behind a ProfileCache.
type ProfileSource interface {
	Profile(ctx context.Context, tenantID uuid.UUID, entity entities.EntityID) (Profile, error)
}

// Context is shared by all messages derived from one event.
type Context struct {
	CustomerID uuid.UUID
	Metadata   *messaging.Metadata
}

// Target is the rule engine destination of a message. Empty fields fall
// back to the system defaults.
type Target struct {
	RuleChainID *uuid.UUID
	QueueName   string
}

// Resolver builds routing contexts.
type Resolver interface {
	Resolve(ctx context.Context, tenantID uuid.UUID, entity entities.EntityID) Context
}

// Router resolves rule engine targets.
type Router interface {
	RouteFor(ctx context.Context, tenantID uuid.UUID, entity entities.EntityID) Target
}
