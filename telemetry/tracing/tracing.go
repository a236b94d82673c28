// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package tracing adds spans to the telemetry service.
package tracing

import (
	"context"

	"github.com/absmach/edgesync/edge"
	"github.com/absmach/edgesync/pkg/future"
	"github.com/absmach/edgesync/telemetry"
	"github.com/gofrs/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ telemetry.Service = (*tracingMiddleware)(nil)

type tracingMiddleware struct {
	tracer trace.Tracer
	svc    telemetry.Service
}

// New returns a telemetry service with tracing capabilities.
func New(svc telemetry.Service, tracer trace.Tracer) telemetry.Service {
	return &tracingMiddleware{tracer, svc}
}

func (tm *tracingMiddleware) Process(ctx context.Context, tenantID uuid.UUID, data edge.EntityData) ([]*future.Future, error) {
	ctx, span := tm.tracer.Start(ctx, "svc_process_entity_data", trace.WithAttributes(attributes(tenantID, data)...))
	defer span.End()

	fs, err := tm.svc.Process(ctx, tenantID, data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return fs, err
}

// Handle ends its span when the returned future completes.
func (tm *tracingMiddleware) Handle(ctx context.Context, tenantID uuid.UUID, data edge.EntityData) *future.Future {
	ctx, span := tm.tracer.Start(ctx, "svc_handle_entity_data", trace.WithAttributes(attributes(tenantID, data)...))

	f := tm.svc.Handle(ctx, tenantID, data)
	f.OnComplete(func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	})
	return f
}

func attributes(tenantID uuid.UUID, data edge.EntityData) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("tenant_id", tenantID.String()),
		attribute.String("entity_type", data.EntityType),
	}
	if data.PostTelemetryMsg != nil {
		attrs = append(attrs, attribute.Int("telemetry_groups", len(data.PostTelemetryMsg.TsKvList)))
	}
	if data.PostAttributesMsg != nil {
		attrs = append(attrs, attribute.Int("post_attributes", len(data.PostAttributesMsg.Kv)))
	}
	if data.AttributesUpdatedMsg != nil {
		attrs = append(attrs, attribute.String("attributes_scope", data.PostAttributeScope))
	}
	if data.AttributeDeleteMsg != nil {
		attrs = append(attrs, attribute.StringSlice("deleted_attributes", data.AttributeDeleteMsg.AttributeNames))
	}
	return attrs
}
