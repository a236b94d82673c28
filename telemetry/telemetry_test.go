// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package telemetry_test

import (
	"context"
	"testing"

	"github.com/absmach/edgesync/attributes"
	amocks "github.com/absmach/edgesync/attributes/mocks"
	"github.com/absmach/edgesync/cluster"
	cmocks "github.com/absmach/edgesync/cluster/mocks"
	"github.com/absmach/edgesync/dispatch"
	"github.com/absmach/edgesync/edge"
	"github.com/absmach/edgesync/entities"
	"github.com/absmach/edgesync/logger"
	"github.com/absmach/edgesync/pkg/errors"
	"github.com/absmach/edgesync/pkg/future"
	"github.com/absmach/edgesync/pkg/messaging"
	pkguuid "github.com/absmach/edgesync/pkg/uuid"
	"github.com/absmach/edgesync/routing"
	rmocks "github.com/absmach/edgesync/routing/mocks"
	"github.com/absmach/edgesync/telemetry"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	tenantID    = uuid.Must(uuid.NewV4())
	customerID  = uuid.Must(uuid.NewV4())
	ruleChainID = uuid.Must(uuid.NewV4())
	device      = entities.EntityID{Type: entities.Device, ID: uuid.Must(uuid.NewV4())}
	asset       = entities.EntityID{Type: entities.Asset, ID: uuid.Must(uuid.NewV4())}
	info        = routing.EntityInfo{CustomerID: customerID, Name: "thermostat", Type: "default"}
	profile     = routing.Profile{DefaultRuleChainID: &ruleChainID, DefaultQueueName: "HighPriority"}
)

func entityData(e entities.EntityID) edge.EntityData {
	return edge.EntityData{
		EntityType:  string(e.Type),
		EntityIDMSB: e.MostSignificantBits(),
		EntityIDLSB: e.LeastSignificantBits(),
	}
}

func kvs() []edge.KeyValue {
	return []edge.KeyValue{
		{Key: "temperature", Type: edge.DoubleV, DoubleV: 21.5},
		{Key: "active", Type: edge.BooleanV, BoolV: true},
	}
}

func telemetryMsg(ts ...int64) *edge.PostTelemetryMsg {
	msg := &edge.PostTelemetryMsg{}
	for _, t := range ts {
		msg.TsKvList = append(msg.TsKvList, edge.TsKvList{Ts: t, Kv: kvs()})
	}
	return msg
}

func newRouting() (routing.Resolver, routing.Router, *rmocks.EntityLookup, *rmocks.ProfileCache) {
	lookup := new(rmocks.EntityLookup)
	cache := new(rmocks.ProfileCache)
	lookup.On("Find", mock.Anything, tenantID, mock.Anything).Return(info, nil)
	cache.On("Get", mock.Anything, tenantID, mock.Anything).Return(profile, nil)
	return routing.NewResolver(lookup, logger.NewMock()), routing.NewProfileRoutes(cache, logger.NewMock()), lookup, cache
}

func TestTranslate(t *testing.T) {
	resolver, router, _, _ := newRouting()
	tr := telemetry.NewTranslator(resolver, router, pkguuid.NewMock(), logger.NewMock())

	cases := []struct {
		desc  string
		data  edge.EntityData
		types []messaging.MsgType
		ts    []string
		err   error
	}{
		{
			desc: "translate telemetry groups",
			data: func() edge.EntityData {
				d := entityData(device)
				d.PostTelemetryMsg = telemetryMsg(1000, 2000, 3000)
				return d
			}(),
			types: []messaging.MsgType{messaging.PostTelemetryRequest, messaging.PostTelemetryRequest, messaging.PostTelemetryRequest},
			ts:    []string{"1000", "2000", "3000"},
		},
		{
			desc: "translate attributes and telemetry",
			data: func() edge.EntityData {
				d := entityData(device)
				d.PostAttributesMsg = &edge.PostAttributeMsg{Kv: kvs()}
				d.PostTelemetryMsg = telemetryMsg(1000)
				return d
			}(),
			types: []messaging.MsgType{messaging.PostAttributesRequest, messaging.PostTelemetryRequest},
			ts:    []string{"", "1000"},
		},
		{
			desc: "translate unknown entity type",
			data: func() edge.EntityData {
				d := entityData(device)
				d.EntityType = "WIDGET"
				d.PostTelemetryMsg = telemetryMsg(1000)
				return d
			}(),
		},
		{
			desc: "translate malformed json value",
			data: func() edge.EntityData {
				d := entityData(device)
				d.PostAttributesMsg = &edge.PostAttributeMsg{Kv: []edge.KeyValue{{Key: "cfg", Type: edge.JSONV, JSONV: "{bad"}}}
				return d
			}(),
			err: errors.ErrDecode,
		},
		{
			desc: "translate unsupported value type",
			data: func() edge.EntityData {
				d := entityData(device)
				d.PostTelemetryMsg = &edge.PostTelemetryMsg{TsKvList: []edge.TsKvList{{Ts: 1, Kv: []edge.KeyValue{{Key: "k", Type: "BYTES_V"}}}}}
				return d
			}(),
			err: errors.ErrDecode,
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			msgs, err := tr.Translate(context.Background(), tenantID, tc.data)
			assert.True(t, errors.Contains(err, tc.err), "expected %s got %s", tc.err, err)
			require.Len(t, msgs, len(tc.types))
			ids := map[string]bool{}
			for i, msg := range msgs {
				assert.Equal(t, tc.types[i], msg.Type)
				assert.Equal(t, device, msg.Originator)
				assert.Equal(t, customerID, msg.CustomerID)
				assert.Equal(t, "HighPriority", msg.QueueName)
				assert.Equal(t, &ruleChainID, msg.RuleChainID)
				assert.Equal(t, `{"temperature":21.5,"active":true}`, msg.Data)

				name, _ := msg.Metadata.Get("deviceName")
				assert.Equal(t, "thermostat", name)
				typ, _ := msg.Metadata.Get("deviceType")
				assert.Equal(t, "default", typ)
				src, _ := msg.Metadata.Get(messaging.SourceKey)
				assert.Equal(t, messaging.CloudSource, src)
				ts, _ := msg.Metadata.Get(messaging.TsKey)
				assert.Equal(t, tc.ts[i], ts)

				assert.False(t, ids[msg.ID], "message id %s reused", msg.ID)
				ids[msg.ID] = true
			}
		})
	}
}

type fixture struct {
	svc     telemetry.Service
	cluster *cmocks.Service
	store   *amocks.Store
}

func newService(pushErr error) fixture {
	resolver, router, _, _ := newRouting()
	cs := new(cmocks.Service)
	cs.On("PushToRuleEngine", mock.Anything, tenantID, mock.Anything, mock.Anything, mock.Anything).Return(pushErr)
	cs.On("PushDeviceActivity", mock.Anything, tenantID, mock.Anything, mock.Anything).Return()
	store := new(amocks.Store)
	svc := telemetry.NewService(resolver, router, pkguuid.NewMock(), dispatch.New(cs, logger.NewMock()), store, cs, logger.NewMock())
	return fixture{svc: svc, cluster: cs, store: store}
}

func TestProcessTelemetry(t *testing.T) {
	cases := []struct {
		desc    string
		entity  entities.EntityID
		groups  []int64
		pushErr error
		err     error
		active  bool
	}{
		{desc: "process device telemetry", entity: device, groups: []int64{1, 2, 3}, active: true},
		{desc: "process asset telemetry", entity: asset, groups: []int64{1, 2}},
		{desc: "process rejected telemetry", entity: device, groups: []int64{1, 2}, pushErr: assert.AnError, err: errors.ErrDispatch, active: true},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			fx := newService(tc.pushErr)
			data := entityData(tc.entity)
			data.PostTelemetryMsg = telemetryMsg(tc.groups...)

			futures, err := fx.svc.Process(context.Background(), tenantID, data)
			require.Nil(t, err)
			require.Len(t, futures, 1)
			err = futures[0].Wait(context.Background())
			assert.True(t, errors.Contains(err, tc.err), "expected %s got %s", tc.err, err)

			fx.cluster.AssertNumberOfCalls(t, "PushToRuleEngine", len(tc.groups))
			if tc.active {
				fx.cluster.AssertCalled(t, "PushDeviceActivity", mock.Anything, tenantID, tc.entity.ID, mock.Anything)
				return
			}
			fx.cluster.AssertNotCalled(t, "PushDeviceActivity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestProcessAttributesUpdate(t *testing.T) {
	cases := []struct {
		desc   string
		saved  *future.Future
		pushed int
		err    error
	}{
		{desc: "process saved attributes update", saved: future.Succeeded(), pushed: 1},
		{desc: "process attributes update with failed save", saved: future.Failed(errors.ErrSaveAttributes), err: errors.ErrSaveAttributes},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			fx := newService(nil)
			data := entityData(device)
			data.AttributesUpdatedMsg = &edge.PostAttributeMsg{Kv: kvs()}
			data.PostAttributeScope = attributes.SharedScope

			fx.store.On("Save", mock.Anything, tenantID, device, attributes.SharedScope, mock.MatchedBy(func(kvs []attributes.KeyValue) bool {
				return len(kvs) == 2 && kvs[0].Key == "temperature" && kvs[0].Value == 21.5 && kvs[1].Value == true
			})).Return(tc.saved)

			err := fx.svc.Handle(context.Background(), tenantID, data).Wait(context.Background())
			assert.True(t, errors.Contains(err, tc.err), "expected %s got %s", tc.err, err)
			fx.cluster.AssertNumberOfCalls(t, "PushToRuleEngine", tc.pushed)
			if tc.pushed > 0 {
				fx.cluster.AssertCalled(t, "PushToRuleEngine", mock.Anything, tenantID, device, mock.MatchedBy(func(msg messaging.Message) bool {
					scope, _ := msg.Metadata.Get(messaging.ScopeKey)
					return msg.Type == messaging.AttributesUpdated && scope == attributes.SharedScope
				}), mock.Anything)
			}
		})
	}
}

func TestProcessAttributesDelete(t *testing.T) {
	keys := []string{"firmware", "threshold"}
	cases := []struct {
		desc      string
		entity    entities.EntityID
		removeErr error
		notified  bool
		err       error
	}{
		{desc: "delete device attributes", entity: device, notified: true},
		{desc: "delete asset attributes", entity: asset},
		{desc: "delete asset attributes with failed removal", entity: asset, removeErr: errors.ErrRemoveAttributes, err: errors.ErrRemoveAttributes},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			fx := newService(nil)
			fx.cluster.On("PushToCore", mock.Anything, tenantID, tc.entity.ID, mock.Anything, mock.Anything).Return(nil)
			fx.store.On("RemoveAll", mock.Anything, tenantID, tc.entity, attributes.ServerScope, keys).Return(tc.removeErr)

			data := entityData(tc.entity)
			data.AttributeDeleteMsg = &edge.AttributeDeleteMsg{Scope: attributes.ServerScope, AttributeNames: keys}
			err := fx.svc.Handle(context.Background(), tenantID, data).Wait(context.Background())
			assert.True(t, errors.Contains(err, tc.err), "expected %s got %s", tc.err, err)

			fx.store.AssertNumberOfCalls(t, "RemoveAll", 1)
			fx.cluster.AssertNotCalled(t, "PushDeviceActivity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			if !tc.notified {
				fx.cluster.AssertNotCalled(t, "PushToCore", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				return
			}
			fx.cluster.AssertNumberOfCalls(t, "PushToCore", 1)
			fx.cluster.AssertCalled(t, "PushToCore", mock.Anything, tenantID, tc.entity.ID, mock.MatchedBy(func(msg cluster.CoreMsg) bool {
				ev := msg.AttributesEvent
				return ev != nil && ev.Deleted && ev.Scope == attributes.ServerScope && assert.ObjectsAreEqual(keys, ev.Keys)
			}), mock.Anything)
		})
	}
}

func TestProcessMalformed(t *testing.T) {
	cases := []struct {
		desc string
		data edge.EntityData
	}{
		{
			desc: "process update with unknown scope",
			data: func() edge.EntityData {
				d := entityData(device)
				d.PostTelemetryMsg = telemetryMsg(1)
				d.AttributesUpdatedMsg = &edge.PostAttributeMsg{Kv: kvs()}
				d.PostAttributeScope = "GLOBAL_SCOPE"
				return d
			}(),
		},
		{
			desc: "process delete with unknown scope",
			data: func() edge.EntityData {
				d := entityData(device)
				d.AttributeDeleteMsg = &edge.AttributeDeleteMsg{Scope: "GLOBAL_SCOPE", AttributeNames: []string{"a"}}
				return d
			}(),
		},
		{
			desc: "process telemetry with malformed group",
			data: func() edge.EntityData {
				d := entityData(device)
				d.PostTelemetryMsg = telemetryMsg(1)
				d.PostTelemetryMsg.TsKvList = append(d.PostTelemetryMsg.TsKvList, edge.TsKvList{Ts: 2, Kv: []edge.KeyValue{{Key: "cfg", Type: edge.JSONV, JSONV: "["}}})
				return d
			}(),
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			fx := newService(nil)
			futures, err := fx.svc.Process(context.Background(), tenantID, tc.data)
			assert.True(t, errors.Contains(err, errors.ErrDecode), "expected %s got %s", errors.ErrDecode, err)
			assert.Empty(t, futures)
			fx.cluster.AssertNotCalled(t, "PushToRuleEngine", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			fx.cluster.AssertNotCalled(t, "PushDeviceActivity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestProcessUnknownEntityType(t *testing.T) {
	fx := newService(nil)
	data := entityData(device)
	data.EntityType = "WIDGET"
	data.PostTelemetryMsg = telemetryMsg(1)

	futures, err := fx.svc.Process(context.Background(), tenantID, data)
	require.Nil(t, err)
	assert.Empty(t, futures)
	assert.Nil(t, future.AllOf(futures...).Err())
	fx.cluster.AssertNotCalled(t, "PushToRuleEngine", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessPendingAttributesSave(t *testing.T) {
	fx := newService(nil)
	data := entityData(device)
	data.AttributesUpdatedMsg = &edge.PostAttributeMsg{Kv: kvs()}
	data.PostAttributeScope = attributes.ServerScope

	saved := future.New()
	fx.store.On("Save", mock.Anything, tenantID, device, attributes.ServerScope, mock.Anything).Return(saved)

	f := fx.svc.Handle(context.Background(), tenantID, data)
	fx.cluster.AssertNotCalled(t, "PushToRuleEngine", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.False(t, f.IsDone())

	require.True(t, saved.Complete(nil))
	assert.Nil(t, f.Wait(context.Background()))
	fx.cluster.AssertNumberOfCalls(t, "PushToRuleEngine", 1)
}

func TestProcessAttributesDeleteUnknownType(t *testing.T) {
	keys := []string{"k1", "k2"}
	fx := newService(nil)
	data := entityData(device)
	data.EntityType = "WIDGET"
	data.PostTelemetryMsg = telemetryMsg(1)
	data.AttributeDeleteMsg = &edge.AttributeDeleteMsg{Scope: attributes.ServerScope, AttributeNames: keys}

	raw := entities.EntityID{ID: device.ID}
	fx.store.On("RemoveAll", mock.Anything, tenantID, raw, attributes.ServerScope, keys).Return(nil)

	futures, err := fx.svc.Process(context.Background(), tenantID, data)
	require.Nil(t, err)
	require.Len(t, futures, 1)
	assert.Nil(t, futures[0].Wait(context.Background()))

	fx.store.AssertNumberOfCalls(t, "RemoveAll", 1)
	fx.store.AssertCalled(t, "RemoveAll", mock.Anything, tenantID, raw, attributes.ServerScope, keys)
	fx.cluster.AssertNotCalled(t, "PushToRuleEngine", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	fx.cluster.AssertNotCalled(t, "PushDeviceActivity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	fx.cluster.AssertNotCalled(t, "PushToCore", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
