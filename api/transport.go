// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package api exposes the HTTP surface of edgesync: entity data ingestion,
// cloud event submission, health and metrics.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/absmach/edgesync"
	"github.com/absmach/edgesync/pkg/errors"
	"github.com/absmach/edgesync/telemetry"
	"github.com/absmach/edgesync/uplink"
	"github.com/go-chi/chi/v5"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/gofrs/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	// ContentType is the content type of requests and responses.
	ContentType = "application/json"

	tenantKey = "tenantID"
)

// MakeHandler returns a HTTP handler for API endpoints.
func MakeHandler(svc telemetry.Service, repo uplink.EventRepository, idp edgesync.IDProvider, svcName, instanceID string) http.Handler {
	opts := []kithttp.ServerOption{
		kithttp.ServerErrorEncoder(EncodeError),
	}

	r := chi.NewRouter()
	r.Route("/tenants/{tenantID}", func(r chi.Router) {
		r.Post("/entity-data", otelhttp.NewHandler(kithttp.NewServer(
			handleEntityDataEndpoint(svc),
			decodeEntityData,
			EncodeResponse,
			opts...,
		), "handle_entity_data").ServeHTTP)
		r.Post("/events", otelhttp.NewHandler(kithttp.NewServer(
			saveCloudEventEndpoint(repo, idp),
			decodeCloudEvent,
			EncodeResponse,
			opts...,
		), "save_cloud_event").ServeHTTP)
	})

	r.Get("/health", edgesync.Health(svcName, instanceID))
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func decodeEntityData(_ context.Context, r *http.Request) (interface{}, error) {
	if !strings.Contains(r.Header.Get("Content-Type"), ContentType) {
		return nil, ErrUnsupportedContentType
	}
	tenantID, err := tenant(r)
	if err != nil {
		return nil, err
	}

	req := entityDataReq{tenantID: tenantID}
	if err := json.NewDecoder(r.Body).Decode(&req.data); err != nil {
		return nil, errors.Wrap(errors.ErrMalformedEntity, err)
	}
	return req, nil
}

func decodeCloudEvent(_ context.Context, r *http.Request) (interface{}, error) {
	if !strings.Contains(r.Header.Get("Content-Type"), ContentType) {
		return nil, ErrUnsupportedContentType
	}
	tenantID, err := tenant(r)
	if err != nil {
		return nil, err
	}

	req := cloudEventReq{tenantID: tenantID}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.Wrap(errors.ErrMalformedEntity, err)
	}
	return req, nil
}

func tenant(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.FromString(chi.URLParam(r, tenantKey))
	if err != nil {
		return uuid.Nil, errors.Wrap(ErrValidation, ErrInvalidTenant)
	}
	return id, nil
}
