// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/absmach/edgesync"
	"github.com/absmach/edgesync/attributes"
	"github.com/absmach/edgesync/edge"
	"github.com/absmach/edgesync/entities"
	"github.com/absmach/edgesync/logger"
	"github.com/absmach/edgesync/pkg/errors"
	"github.com/absmach/edgesync/pkg/messaging"
	"github.com/absmach/edgesync/routing"
	"github.com/gofrs/uuid"
)

// Translator converts entity data into canonical rule engine messages.
type Translator interface {
	// Translate returns the post-attributes message followed by one
	// post-telemetry message per timestamp group. Unknown entity types
	// produce no messages.
	Translate(ctx context.Context, tenantID uuid.UUID, data edge.EntityData) ([]messaging.Message, error)
}

// Translation is the decoded content of one entity data event.
type Translation struct {
	// Entity is unset when the entity type is not recognized.
	Entity   entities.EntityID
	Resolved bool

	// Routed is set when the event carried a payload routed to the rule engine.
	Routed bool

	PostAttributes *messaging.Message
	Telemetry      []messaging.Message

	// AttributesUpdate is emitted only after UpdatedAttributes are saved.
	AttributesUpdate  *messaging.Message
	UpdatedAttributes []attributes.KeyValue
	UpdateScope       string
}

// Messages returns the messages dispatchable without a prior write.
func (tr Translation) Messages() []messaging.Message {
	var msgs []messaging.Message
	if tr.PostAttributes != nil {
		msgs = append(msgs, *tr.PostAttributes)
	}
	return append(msgs, tr.Telemetry...)
}

var _ Translator = (*translator)(nil)

type translator struct {
	resolver   routing.Resolver
	router     routing.Router
	idProvider edgesync.IDProvider
	logger     logger.Logger
	now        func() time.Time
}

// NewTranslator returns a translator resolving routing through resolver
// and router.
func NewTranslator(resolver routing.Resolver, router routing.Router, idp edgesync.IDProvider, logger logger.Logger) Translator {
	return newTranslator(resolver, router, idp, logger)
}

func newTranslator(resolver routing.Resolver, router routing.Router, idp edgesync.IDProvider, logger logger.Logger) *translator {
	return &translator{
		resolver:   resolver,
		router:     router,
		idProvider: idp,
		logger:     logger,
		now:        time.Now,
	}
}

func (t *translator) Translate(ctx context.Context, tenantID uuid.UUID, data edge.EntityData) ([]messaging.Message, error) {
	tr, err := t.translate(ctx, tenantID, data)
	if err != nil {
		return nil, err
	}
	return tr.Messages(), nil
}

func (t *translator) translate(ctx context.Context, tenantID uuid.UUID, data edge.EntityData) (Translation, error) {
	var tr Translation
	entity, ok := entities.FromBits(data.EntityType, data.EntityIDMSB, data.EntityIDLSB)
	if !ok {
		t.logger.Debug(fmt.Sprintf("[%s] Unsupported entity type %q, skipping entity data", tenantID, data.EntityType))
		return tr, nil
	}
	tr.Entity, tr.Resolved = entity, true

	if data.PostAttributesMsg == nil && data.AttributesUpdatedMsg == nil && data.PostTelemetryMsg == nil {
		return tr, nil
	}

	// Decode every payload before resolving anything so that a malformed
	// event has no side effects.
	var (
		postAttrs   []byte
		updateAttrs []byte
		telemetry   [][]byte
		err         error
	)
	if data.PostAttributesMsg != nil {
		if postAttrs, err = edge.KeyValuesToJSON(data.PostAttributesMsg.Kv); err != nil {
			return tr, errors.Wrap(errors.ErrDecode, err)
		}
	}
	if data.AttributesUpdatedMsg != nil {
		if !attributes.ValidScope(data.PostAttributeScope) {
			return tr, errors.Wrap(errors.ErrDecode, fmt.Errorf("invalid attribute scope %q", data.PostAttributeScope))
		}
		if updateAttrs, err = edge.KeyValuesToJSON(data.AttributesUpdatedMsg.Kv); err != nil {
			return tr, errors.Wrap(errors.ErrDecode, err)
		}
		if tr.UpdatedAttributes, err = toAttributes(data.AttributesUpdatedMsg.Kv, t.now()); err != nil {
			return tr, errors.Wrap(errors.ErrDecode, err)
		}
		tr.UpdateScope = data.PostAttributeScope
	}
	if data.PostTelemetryMsg != nil {
		for _, group := range data.PostTelemetryMsg.TsKvList {
			payload, err := edge.KeyValuesToJSON(group.Kv)
			if err != nil {
				return tr, errors.Wrap(errors.ErrDecode, err)
			}
			telemetry = append(telemetry, payload)
		}
	}

	tr.Routed = true
	rc := t.resolver.Resolve(ctx, tenantID, entity)
	rc.Metadata.Put(messaging.SourceKey, messaging.CloudSource)
	if data.AttributesUpdatedMsg != nil {
		rc.Metadata.Put(messaging.ScopeKey, data.PostAttributeScope)
	}

	if postAttrs != nil {
		msg, err := t.newMessage(ctx, tenantID, messaging.PostAttributesRequest, entity, rc, rc.Metadata.Copy(), postAttrs)
		if err != nil {
			return tr, err
		}
		tr.PostAttributes = &msg
	}
	if updateAttrs != nil {
		msg, err := t.newMessage(ctx, tenantID, messaging.AttributesUpdated, entity, rc, rc.Metadata.Copy(), updateAttrs)
		if err != nil {
			return tr, err
		}
		tr.AttributesUpdate = &msg
	}
	for i, group := range data.PostTelemetryMsg.Groups() {
		md := rc.Metadata.Copy()
		md.Put(messaging.TsKey, strconv.FormatInt(group.Ts, 10))
		msg, err := t.newMessage(ctx, tenantID, messaging.PostTelemetryRequest, entity, rc, md, telemetry[i])
		if err != nil {
			return tr, err
		}
		tr.Telemetry = append(tr.Telemetry, msg)
	}

	return tr, nil
}

func (t *translator) newMessage(ctx context.Context, tenantID uuid.UUID, typ messaging.MsgType, entity entities.EntityID, rc routing.Context, md *messaging.Metadata, payload []byte) (messaging.Message, error) {
	id, err := t.idProvider.ID()
	if err != nil {
		return messaging.Message{}, err
	}
	target := t.router.RouteFor(ctx, tenantID, entity)

	return messaging.Message{
		ID:          id,
		Ts:          t.now().UnixMilli(),
		Type:        typ,
		Originator:  entity,
		CustomerID:  rc.CustomerID,
		Metadata:    md,
		Data:        string(payload),
		QueueName:   target.QueueName,
		RuleChainID: target.RuleChainID,
	}, nil
}

func toAttributes(kvs []edge.KeyValue, now time.Time) ([]attributes.KeyValue, error) {
	ret := make([]attributes.KeyValue, 0, len(kvs))
	for _, kv := range kvs {
		v, err := kv.Value()
		if err != nil {
			return nil, err
		}
		ret = append(ret, attributes.KeyValue{
			Key:          kv.Key,
			Value:        v,
			LastUpdateTS: now.UnixMilli(),
		})
	}
	return ret, nil
}
