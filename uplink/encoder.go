// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package uplink

import (
	"fmt"
	"time"

	"github.com/absmach/edgesync/attributes"
	"github.com/absmach/edgesync/edge"
	"github.com/absmach/edgesync/entities"
	"github.com/absmach/edgesync/logger"
)

// Encoder converts cloud events into uplink envelopes. A nil envelope means
// the event must be dropped.
type Encoder interface {
	// EncodeChangeEvent returns an envelope with one entity data record.
	EncodeChangeEvent(ev CloudEvent) *edge.UplinkMsg

	// EncodeAttributesRequest returns an envelope requesting the server
	// scope attributes of the entity, and the shared scope ones for devices.
	EncodeAttributesRequest(ev CloudEvent) *edge.UplinkMsg
}

var _ Encoder = (*encoder)(nil)

type encoder struct {
	ids    *IDGenerator
	logger logger.Logger
	now    func() time.Time
}

// NewEncoder returns an encoder numbering envelopes with ids.
func NewEncoder(ids *IDGenerator, logger logger.Logger) Encoder {
	return &encoder{
		ids:    ids,
		logger: logger,
		now:    time.Now,
	}
}

func (e *encoder) EncodeChangeEvent(ev CloudEvent) *edge.UplinkMsg {
	entity, ok := entities.New(ev.Type, ev.EntityID)
	if !ok {
		e.logger.Warn(fmt.Sprintf("Unsupported cloud event type %q of event %s", ev.Type, ev.ID))
		return nil
	}
	data, err := entityData(entity, ev.Action, ev.Body, e.now())
	if err != nil {
		e.logger.Warn(fmt.Sprintf("Can't convert %s event %s of %s: %s", ev.Action, ev.ID, entity, err))
		return nil
	}

	return &edge.UplinkMsg{
		UplinkMsgID: e.ids.Next(),
		EntityData:  []edge.EntityData{data},
	}
}

func (e *encoder) EncodeAttributesRequest(ev CloudEvent) *edge.UplinkMsg {
	entity, ok := entities.New(ev.Type, ev.EntityID)
	if !ok {
		e.logger.Warn(fmt.Sprintf("Can't send attribute request msg of event %s: unsupported type %q", ev.ID, ev.Type))
		return nil
	}

	request := func(scope string) edge.AttributesRequestMsg {
		return edge.AttributesRequestMsg{
			EntityIDMSB: entity.MostSignificantBits(),
			EntityIDLSB: entity.LeastSignificantBits(),
			EntityType:  entity.Type.String(),
			Scope:       scope,
		}
	}
	reqs := []edge.AttributesRequestMsg{request(attributes.ServerScope)}
	if entity.Type == entities.Device {
		reqs = append(reqs, request(attributes.SharedScope))
	}

	return &edge.UplinkMsg{
		UplinkMsgID:          e.ids.Next(),
		AttributesRequestMsg: reqs,
	}
}
