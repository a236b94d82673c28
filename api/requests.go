// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"encoding/json"

	"github.com/absmach/edgesync/edge"
	"github.com/absmach/edgesync/entities"
	"github.com/absmach/edgesync/uplink"
	"github.com/gofrs/uuid"
)

type entityDataReq struct {
	tenantID uuid.UUID
	data     edge.EntityData
}

func (req entityDataReq) validate() error {
	if req.data.EntityType == "" {
		return ErrMissingEntityType
	}
	return nil
}

type cloudEventReq struct {
	tenantID uuid.UUID
	Type     string            `json:"type"`
	Action   uplink.ActionType `json:"action"`
	EntityID uuid.UUID         `json:"entity_id"`
	Body     json.RawMessage   `json:"body,omitempty"`
}

func (req cloudEventReq) validate() error {
	if _, ok := entities.ParseEntityType(req.Type); !ok {
		return ErrInvalidEntityType
	}
	if !req.Action.Valid() {
		return ErrInvalidAction
	}
	if req.EntityID == uuid.Nil {
		return ErrMissingID
	}
	return nil
}
