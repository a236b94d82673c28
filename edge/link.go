// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package edge

import (
	"context"

	"github.com/absmach/edgesync/pkg/future"
	"github.com/gofrs/uuid"
)

// Handler processes entity data received from an edge of a tenant.
type Handler interface {
	// Handle returns the aggregated outcome of every operation carried by
	// data. Decoding failures are reported through the returned future.
	Handle(ctx context.Context, tenantID uuid.UUID, data EntityData) *future.Future
}

// Publisher sends uplink envelopes to the edge of a tenant.
type Publisher interface {
	Publish(ctx context.Context, tenantID uuid.UUID, msg UplinkMsg) error

	// Close gracefully closes the link.
	Close() error
}

// Subscriber delivers entity data received from edges to a handler.
type Subscriber interface {
	Subscribe(ctx context.Context, h Handler) error

	// Close gracefully closes the link.
	Close() error
}
