// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"time"

	"github.com/absmach/edgesync"
	"github.com/absmach/edgesync/pkg/errors"
	"github.com/absmach/edgesync/telemetry"
	"github.com/absmach/edgesync/uplink"
	"github.com/go-kit/kit/endpoint"
	"github.com/gofrs/uuid"
)

func handleEntityDataEndpoint(svc telemetry.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(entityDataReq)
		if err := req.validate(); err != nil {
			return nil, errors.Wrap(ErrValidation, err)
		}

		// The request context bounds the wait, not the operations.
		if err := svc.Handle(context.WithoutCancel(ctx), req.tenantID, req.data).Wait(ctx); err != nil {
			return nil, err
		}
		return entityDataRes{Status: "processed"}, nil
	}
}

func saveCloudEventEndpoint(repo uplink.EventRepository, idp edgesync.IDProvider) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(cloudEventReq)
		if err := req.validate(); err != nil {
			return nil, errors.Wrap(ErrValidation, err)
		}

		id, err := idp.ID()
		if err != nil {
			return nil, err
		}
		evID, err := uuid.FromString(id)
		if err != nil {
			return nil, err
		}
		ev := uplink.CloudEvent{
			ID:        evID,
			TenantID:  req.tenantID,
			Type:      req.Type,
			Action:    req.Action,
			EntityID:  req.EntityID,
			Body:      req.Body,
			CreatedAt: time.Now(),
		}
		if err := repo.Save(ctx, ev); err != nil {
			return nil, err
		}
		return cloudEventRes{ID: evID}, nil
	}
}
