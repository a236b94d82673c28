// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package telemetry processes telemetry and attribute updates received from
// edges and forwards them to the rule engine.
package telemetry

import (
	"context"
	"fmt"

	"github.com/absmach/edgesync"
	"github.com/absmach/edgesync/attributes"
	"github.com/absmach/edgesync/cluster"
	"github.com/absmach/edgesync/dispatch"
	"github.com/absmach/edgesync/edge"
	"github.com/absmach/edgesync/entities"
	"github.com/absmach/edgesync/logger"
	"github.com/absmach/edgesync/pkg/errors"
	"github.com/absmach/edgesync/pkg/future"
	"github.com/absmach/edgesync/queue"
	"github.com/absmach/edgesync/routing"
	"github.com/gofrs/uuid"
)

// Service processes entity data received from edges.
type Service interface {
	edge.Handler

	// Process starts every operation carried by data and returns one
	// future per operation in the order post-attributes, attributes
	// update, telemetry, attribute delete. A decoding error fails the whole
	// call before anything is sent.
	Process(ctx context.Context, tenantID uuid.UUID, data edge.EntityData) ([]*future.Future, error)
}

var _ Service = (*service)(nil)

type service struct {
	translator *translator
	dispatcher dispatch.Coordinator
	store      attributes.Store
	cluster    cluster.Service
	logger     logger.Logger
}

// NewService returns a telemetry processing service.
func NewService(resolver routing.Resolver, router routing.Router, idp edgesync.IDProvider, dispatcher dispatch.Coordinator, store attributes.Store, cluster cluster.Service, logger logger.Logger) Service {
	return &service{
		translator: newTranslator(resolver, router, idp, logger),
		dispatcher: dispatcher,
		store:      store,
		cluster:    cluster,
		logger:     logger,
	}
}

func (svc *service) Handle(ctx context.Context, tenantID uuid.UUID, data edge.EntityData) *future.Future {
	futures, err := svc.Process(ctx, tenantID, data)
	if err != nil {
		return future.Failed(err)
	}
	return future.AllOf(futures...)
}

func (svc *service) Process(ctx context.Context, tenantID uuid.UUID, data edge.EntityData) ([]*future.Future, error) {
	if del := data.AttributeDeleteMsg; del != nil && !attributes.ValidScope(del.Scope) {
		return nil, errors.Wrap(errors.ErrDecode, fmt.Errorf("invalid attribute scope %q", del.Scope))
	}
	tr, err := svc.translator.translate(ctx, tenantID, data)
	if err != nil {
		return nil, err
	}

	var futures []*future.Future
	if tr.PostAttributes != nil {
		futures = append(futures, svc.dispatcher.Dispatch(ctx, tenantID, *tr.PostAttributes))
	}
	if tr.AttributesUpdate != nil {
		futures = append(futures, svc.updateAttributes(ctx, tenantID, tr))
	}
	if data.PostTelemetryMsg != nil && tr.Routed {
		futures = append(futures, svc.dispatcher.DispatchAll(ctx, tenantID, tr.Telemetry))
	}
	if tr.Routed && tr.Entity.Type == entities.Device {
		svc.cluster.PushDeviceActivity(ctx, tenantID, tr.Entity.ID, svc.translator.now().UnixMilli())
	}

	// Deletes do not depend on the entity type being recognized.
	if data.AttributeDeleteMsg != nil {
		entity := tr.Entity
		if !tr.Resolved {
			entity = entities.EntityID{ID: entities.UUIDFromBits(data.EntityIDMSB, data.EntityIDLSB)}
		}
		futures = append(futures, svc.deleteAttributes(ctx, tenantID, entity, data))
	}

	return futures, nil
}

func (svc *service) updateAttributes(ctx context.Context, tenantID uuid.UUID, tr Translation) *future.Future {
	msg := *tr.AttributesUpdate
	saved := svc.store.Save(ctx, tenantID, tr.Entity, tr.UpdateScope, tr.UpdatedAttributes)
	saved.OnComplete(func(err error) {
		if err != nil {
			svc.logger.Error(fmt.Sprintf("Can't process attributes update of %s: %s", tr.Entity, err))
		}
	})

	return future.Then(saved, func() *future.Future {
		return svc.dispatcher.Dispatch(ctx, tenantID, msg)
	})
}

func (svc *service) deleteAttributes(ctx context.Context, tenantID uuid.UUID, entity entities.EntityID, data edge.EntityData) *future.Future {
	del := data.AttributeDeleteMsg
	err := svc.store.RemoveAll(ctx, tenantID, entity, del.Scope, del.AttributeNames)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("Can't remove attributes %v of %s: %s", del.AttributeNames, entity, err))
	}
	if data.EntityType != string(entities.Device) {
		if err != nil {
			return future.Failed(err)
		}
		return future.Succeeded()
	}

	f := future.New()
	ev := cluster.AttributesDeleted(tenantID, entity.ID, del.Scope, del.AttributeNames)
	svc.cluster.PushToCore(ctx, tenantID, entity.ID, cluster.CoreMsg{AttributesEvent: &ev}, queue.CallbackFuncs{
		Success: func(queue.Metadata) {
			f.Complete(nil)
		},
		Failure: func(err error) {
			svc.logger.Error(fmt.Sprintf("Can't process attribute delete msg of %s: %s", entity, err))
			f.Complete(errors.Wrap(errors.ErrDispatch, err))
		},
	})
	return f
}
