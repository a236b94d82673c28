// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package entities_test

import (
	"testing"

	"github.com/absmach/edgesync/entities"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
)

func TestParseEntityType(t *testing.T) {
	cases := []struct {
		desc string
		name string
		typ  entities.EntityType
		ok   bool
	}{
		{desc: "device", name: "DEVICE", typ: entities.Device, ok: true},
		{desc: "entity view", name: "ENTITY_VIEW", typ: entities.EntityView, ok: true},
		{desc: "user", name: "USER", typ: entities.User, ok: true},
		{desc: "lowercase name", name: "device", ok: false},
		{desc: "unsupported type", name: "RULE_CHAIN", ok: false},
		{desc: "empty name", name: "", ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			typ, ok := entities.ParseEntityType(tc.name)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.typ, typ)
		})
	}
}

func TestMetadataKeys(t *testing.T) {
	cases := []struct {
		typ      entities.EntityType
		nameKey  string
		typeKey  string
		profiled bool
	}{
		{typ: entities.Device, nameKey: "deviceName", typeKey: "deviceType", profiled: true},
		{typ: entities.Asset, nameKey: "assetName", typeKey: "assetType", profiled: true},
		{typ: entities.EntityView, nameKey: "entityViewName", typeKey: "entityViewType"},
		{typ: entities.Edge, nameKey: "edgeName", typeKey: "edgeType"},
		{typ: entities.Dashboard},
		{typ: entities.Tenant},
		{typ: entities.Customer},
		{typ: entities.User},
	}

	for _, tc := range cases {
		t.Run(tc.typ.String(), func(t *testing.T) {
			assert.Equal(t, tc.nameKey, tc.typ.NameKey())
			assert.Equal(t, tc.typeKey, tc.typ.TypeKey())
			assert.Equal(t, tc.profiled, tc.typ.HasProfile())
		})
	}
}

func TestFromBits(t *testing.T) {
	id := uuid.Must(uuid.FromString("c0ffee00-dead-beef-8bad-f00d00000001"))
	ref, ok := entities.New("ASSET", id)
	assert.True(t, ok)

	back, ok := entities.FromBits("ASSET", ref.MostSignificantBits(), ref.LeastSignificantBits())
	assert.True(t, ok)
	assert.Equal(t, ref, back)

	// Both halves set their sign bit here.
	assert.Negative(t, ref.MostSignificantBits())
	assert.Negative(t, ref.LeastSignificantBits())

	_, ok = entities.FromBits("WIDGET", 1, 2)
	assert.False(t, ok, "unknown type must yield an absent reference")
}

func TestNullUUID(t *testing.T) {
	assert.Equal(t, "13814000-1dd2-11b2-8080-808080808080", entities.NullUUID.String())
	assert.True(t, entities.EntityID{}.IsZero())
	assert.False(t, entities.EntityID{Type: entities.Device, ID: entities.NullUUID}.IsZero())
}
