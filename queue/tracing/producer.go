// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package tracing wraps a queue producer with OpenTelemetry spans.
package tracing

import (
	"context"
	"fmt"

	"github.com/absmach/edgesync/queue"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const sendOp = "send"

var _ queue.Producer = (*producerMiddleware)(nil)

type producerMiddleware struct {
	producer queue.Producer
	tracer   trace.Tracer
}

// New returns a queue producer tracing middleware. The span of a send ends
// when its outcome is delivered.
func New(tracer trace.Tracer, producer queue.Producer) queue.Producer {
	return &producerMiddleware{
		producer: producer,
		tracer:   tracer,
	}
}

func (pm *producerMiddleware) Send(ctx context.Context, tpi queue.TopicPartition, msg queue.Msg, cb queue.Callback) {
	ctx, span := pm.tracer.Start(ctx, fmt.Sprintf("%s %s", tpi.Topic, sendOp),
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.operation", sendOp),
			attribute.String("messaging.destination.name", tpi.FullTopicName()),
			attribute.String("messaging.service_type", string(tpi.ServiceType)),
			attribute.String("tenant_id", tpi.TenantID.String()),
			attribute.String("messaging.message.key", msg.Key.String()),
			attribute.Int("messaging.message.payload_size_bytes", len(msg.Value)),
		))

	pm.producer.Send(ctx, tpi, msg, queue.CallbackFuncs{
		Success: func(md queue.Metadata) {
			span.SetAttributes(attribute.Int64("messaging.message.offset", md.Offset))
			span.End()
			queue.Ack(cb, md)
		},
		Failure: func(err error) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.End()
			queue.Nack(cb, err)
		},
	})
}

func (pm *producerMiddleware) Close() error {
	return pm.producer.Close()
}
