// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package entities defines the entity references exchanged between the edge
// and the cloud.
package entities

import (
	"encoding/binary"
	"fmt"

	"github.com/gofrs/uuid"
)

// EntityType is the closed set of entity kinds known on the edge link.
type EntityType string

const (
	Device     EntityType = "DEVICE"
	Asset      EntityType = "ASSET"
	EntityView EntityType = "ENTITY_VIEW"
	Edge       EntityType = "EDGE"
	Dashboard  EntityType = "DASHBOARD"
	Tenant     EntityType = "TENANT"
	Customer   EntityType = "CUSTOMER"
	User       EntityType = "USER"
)

// NullUUID is the well-known id used when an entity has no owner.
var NullUUID = uuid.Must(uuid.FromString("13814000-1dd2-11b2-8080-808080808080"))

// kind describes per-type behaviour. An empty prefix means the type carries
// no name/type metadata.
type kind struct {
	prefix   string
	profiled bool
}

var kinds = map[EntityType]kind{
	Device:     {prefix: "device", profiled: true},
	Asset:      {prefix: "asset", profiled: true},
	EntityView: {prefix: "entityView"},
	Edge:       {prefix: "edge"},
	Dashboard:  {},
	Tenant:     {},
	Customer:   {},
	User:       {},
}

// ParseEntityType returns the entity type named by s.
func ParseEntityType(s string) (EntityType, bool) {
	t := EntityType(s)
	if _, ok := kinds[t]; !ok {
		return "", false
	}
	return t, true
}

// Valid reports whether t is one of the known entity types.
func (t EntityType) Valid() bool {
	_, ok := kinds[t]
	return ok
}

func (t EntityType) String() string {
	return string(t)
}

// MetadataPrefix returns the prefix of the name and type metadata keys, or an
// empty string when the type publishes none.
func (t EntityType) MetadataPrefix() string {
	return kinds[t].prefix
}

// NameKey returns the metadata key holding the entity name.
func (t EntityType) NameKey() string {
	if p := t.MetadataPrefix(); p != "" {
		return p + "Name"
	}
	return ""
}

// TypeKey returns the metadata key holding the entity type label.
func (t EntityType) TypeKey() string {
	if p := t.MetadataPrefix(); p != "" {
		return p + "Type"
	}
	return ""
}

// HasProfile reports whether entities of this type are bound to a profile.
func (t EntityType) HasProfile() bool {
	return kinds[t].profiled
}

// EntityID references a single entity.
type EntityID struct {
	Type EntityType `json:"entityType"`
	ID   uuid.UUID  `json:"id"`
}

// New returns the reference of the entity of type t with the given id.
// Unknown types yield ok == false.
func New(t string, id uuid.UUID) (EntityID, bool) {
	et, ok := ParseEntityType(t)
	if !ok {
		return EntityID{}, false
	}
	return EntityID{Type: et, ID: id}, true
}

// FromBits builds a reference from the two signed halves of a UUID.
func FromBits(t string, msb, lsb int64) (EntityID, bool) {
	return New(t, UUIDFromBits(msb, lsb))
}

// UUIDFromBits assembles a UUID from its most and least significant halves.
func UUIDFromBits(msb, lsb int64) uuid.UUID {
	var id uuid.UUID
	binary.BigEndian.PutUint64(id[:8], uint64(msb))
	binary.BigEndian.PutUint64(id[8:], uint64(lsb))
	return id
}

// MostSignificantBits returns the upper half of the id as a signed integer.
func (e EntityID) MostSignificantBits() int64 {
	return int64(binary.BigEndian.Uint64(e.ID[:8]))
}

// LeastSignificantBits returns the lower half of the id as a signed integer.
func (e EntityID) LeastSignificantBits() int64 {
	return int64(binary.BigEndian.Uint64(e.ID[8:]))
}

// IsZero reports whether e is the absent reference.
func (e EntityID) IsZero() bool {
	return e.Type == "" && e.ID == uuid.Nil
}

func (e EntityID) String() string {
	return fmt.Sprintf("%s[%s]", e.Type, e.ID)
}
