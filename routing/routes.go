// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package routing

import (
	"context"
	"fmt"

	"github.com/absmach/edgesync/entities"
	"github.com/absmach/edgesync/logger"
	"github.com/gofrs/uuid"
)

var _ Router = (*profileRoutes)(nil)

type profileRoutes struct {
	cache  ProfileCache
	logger logger.Logger
}

// NewProfileRoutes returns a router taking targets from entity profiles.
func NewProfileRoutes(cache ProfileCache, logger logger.Logger) Router {
	return &profileRoutes{
		cache:  cache,
		logger: logger,
	}
}

func (pr *profileRoutes) RouteFor(ctx context.Context, tenantID uuid.UUID, entity entities.EntityID) Target {
	if !entity.Type.HasProfile() {
		return Target{}
	}

	profile, err := pr.cache.Get(ctx, tenantID, entity)
	if err != nil {
		pr.logger.Warn(fmt.Sprintf("[%s] %s profile not found: %s", tenantID, entity, err))
		return Target{}
	}
	return Target{
		RuleChainID: profile.DefaultRuleChainID,
		QueueName:   profile.DefaultQueueName,
	}
}
