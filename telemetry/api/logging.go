// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"
	"time"

	"github.com/absmach/edgesync/edge"
	"github.com/absmach/edgesync/entities"
	"github.com/absmach/edgesync/logger"
	"github.com/absmach/edgesync/pkg/future"
	"github.com/absmach/edgesync/telemetry"
	"github.com/gofrs/uuid"
)

var _ telemetry.Service = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger logger.Logger
	svc    telemetry.Service
}

// LoggingMiddleware adds logging facilities to the telemetry service.
func LoggingMiddleware(svc telemetry.Service, logger logger.Logger) telemetry.Service {
	return &loggingMiddleware{logger, svc}
}

func (lm *loggingMiddleware) Process(ctx context.Context, tenantID uuid.UUID, data edge.EntityData) (fs []*future.Future, err error) {
	defer func(begin time.Time) {
		message := fmt.Sprintf("Method process for entity %s of tenant %s started %d operations in %s", describe(data), tenantID, len(fs), time.Since(begin))
		if err != nil {
			lm.logger.Warn(fmt.Sprintf("%s with error: %s.", message, err))
			return
		}
		lm.logger.Debug(fmt.Sprintf("%s without errors.", message))
	}(time.Now())
	return lm.svc.Process(ctx, tenantID, data)
}

func (lm *loggingMiddleware) Handle(ctx context.Context, tenantID uuid.UUID, data edge.EntityData) *future.Future {
	begin := time.Now()
	f := lm.svc.Handle(ctx, tenantID, data)
	f.OnComplete(func(err error) {
		message := fmt.Sprintf("Method handle for entity %s of tenant %s took %s to complete", describe(data), tenantID, time.Since(begin))
		if err != nil {
			lm.logger.Warn(fmt.Sprintf("%s with error: %s.", message, err))
			return
		}
		lm.logger.Info(fmt.Sprintf("%s without errors.", message))
	})
	return f
}

func describe(data edge.EntityData) string {
	id := entities.UUIDFromBits(data.EntityIDMSB, data.EntityIDLSB)
	return fmt.Sprintf("%s[%s]", data.EntityType, id)
}
