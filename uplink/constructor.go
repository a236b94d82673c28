// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package uplink

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/absmach/edgesync/edge"
	"github.com/absmach/edgesync/entities"
	"github.com/absmach/edgesync/pkg/errors"
)

var errMissingBody = errors.New("event body is missing")

type timeseriesBody struct {
	Data json.RawMessage `json:"data"`
	Ts   *int64          `json:"ts"`
}

type attributesBody struct {
	KV    json.RawMessage `json:"kv"`
	Scope string          `json:"scope"`
}

type deleteBody struct {
	Keys  []string `json:"keys"`
	Scope string   `json:"scope"`
}

// entityData builds the entity data record carrying the change described by
// action. Actions without a payload produce a record with only the id set.
func entityData(entity entities.EntityID, action ActionType, body json.RawMessage, now time.Time) (edge.EntityData, error) {
	data := edge.EntityData{
		EntityType:  entity.Type.String(),
		EntityIDMSB: entity.MostSignificantBits(),
		EntityIDLSB: entity.LeastSignificantBits(),
	}

	switch action {
	case TimeseriesUpdated:
		var b timeseriesBody
		if err := decode(body, &b); err != nil {
			return data, err
		}
		kvs, err := edge.KeyValuesFromJSON(b.Data)
		if err != nil {
			return data, errors.Wrap(errors.ErrDecode, err)
		}
		ts := now.UnixMilli()
		if b.Ts != nil {
			ts = *b.Ts
		}
		data.PostTelemetryMsg = &edge.PostTelemetryMsg{TsKvList: []edge.TsKvList{{Ts: ts, Kv: kvs}}}
	case PostAttributes, AttributesUpdated:
		var b attributesBody
		if err := decode(body, &b); err != nil {
			return data, err
		}
		kvs, err := edge.KeyValuesFromJSON(b.KV)
		if err != nil {
			return data, errors.Wrap(errors.ErrDecode, err)
		}
		msg := &edge.PostAttributeMsg{Kv: kvs}
		if action == PostAttributes {
			data.PostAttributesMsg = msg
		} else {
			data.AttributesUpdatedMsg = msg
		}
		data.PostAttributeScope = b.Scope
	case AttributesDeleted:
		var b deleteBody
		if err := decode(body, &b); err != nil {
			return data, err
		}
		data.AttributeDeleteMsg = &edge.AttributeDeleteMsg{Scope: b.Scope, AttributeNames: b.Keys}
	}

	return data, nil
}

func decode(body json.RawMessage, v interface{}) error {
	if len(body) == 0 {
		return errMissingBody
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.Wrap(errors.ErrDecode, fmt.Errorf("malformed event body: %w", err))
	}
	return nil
}
