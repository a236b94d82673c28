// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"time"

	"github.com/absmach/edgesync/edge"
	"github.com/absmach/edgesync/pkg/future"
	"github.com/absmach/edgesync/telemetry"
	"github.com/go-kit/kit/metrics"
	"github.com/gofrs/uuid"
)

var _ telemetry.Service = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	svc     telemetry.Service
}

// MetricsMiddleware instruments the telemetry service by tracking request
// count and latency. Handle latency spans until the outcome is known.
func MetricsMiddleware(svc telemetry.Service, counter metrics.Counter, latency metrics.Histogram) telemetry.Service {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		svc:     svc,
	}
}

func (mm *metricsMiddleware) Process(ctx context.Context, tenantID uuid.UUID, data edge.EntityData) ([]*future.Future, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "process").Add(1)
		mm.latency.With("method", "process").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Process(ctx, tenantID, data)
}

func (mm *metricsMiddleware) Handle(ctx context.Context, tenantID uuid.UUID, data edge.EntityData) *future.Future {
	begin := time.Now()
	f := mm.svc.Handle(ctx, tenantID, data)
	f.OnComplete(func(error) {
		mm.counter.With("method", "handle").Add(1)
		mm.latency.With("method", "handle").Observe(time.Since(begin).Seconds())
	})
	return f
}
