// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package routing

import (
	"context"
	"fmt"

	"github.com/absmach/edgesync/entities"
	"github.com/absmach/edgesync/logger"
	"github.com/absmach/edgesync/pkg/errors"
	"github.com/absmach/edgesync/pkg/messaging"
	"github.com/gofrs/uuid"
)

var _ Resolver = (*resolver)(nil)

type resolver struct {
	lookup EntityLookup
	logger logger.Logger
}

// NewResolver returns a resolver reading entity records through lookup.
func NewResolver(lookup EntityLookup, logger logger.Logger) Resolver {
	return &resolver{
		lookup: lookup,
		logger: logger,
	}
}

func (r *resolver) Resolve(ctx context.Context, tenantID uuid.UUID, entity entities.EntityID) Context {
	rc := Context{
		CustomerID: entities.NullUUID,
		Metadata:   messaging.NewMetadata(),
	}
	if entity.Type.MetadataPrefix() == "" {
		r.logger.Debug(fmt.Sprintf("No routing metadata for entity type %s of %s", entity.Type, entity))
		return rc
	}

	info, err := r.lookup.Find(ctx, tenantID, entity)
	switch {
	case errors.Contains(err, errors.ErrNotFound):
		r.logger.Debug(fmt.Sprintf("Entity %s of tenant %s not found", entity, tenantID))
		return rc
	case err != nil:
		r.logger.Warn(fmt.Sprintf("Failed to look up %s of tenant %s: %s", entity, tenantID, err))
		return rc
	}

	if info.CustomerID != uuid.Nil {
		rc.CustomerID = info.CustomerID
	}
	rc.Metadata.Put(entity.Type.NameKey(), info.Name)
	rc.Metadata.Put(entity.Type.TypeKey(), info.Type)
	return rc
}
