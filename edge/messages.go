// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package edge defines the messages exchanged with edges and the link
// abstractions carrying them.
package edge

// ValueType tags the populated field of a KeyValue.
type ValueType string

const (
	BooleanV ValueType = "BOOLEAN_V"
	LongV    ValueType = "LONG_V"
	DoubleV  ValueType = "DOUBLE_V"
	StringV  ValueType = "STRING_V"
	JSONV    ValueType = "JSON_V"
)

// KeyValue is a single typed key/value pair.
type KeyValue struct {
	Key     string    `json:"key"`
	Type    ValueType `json:"type"`
	BoolV   bool      `json:"boolV,omitempty"`
	LongV   int64     `json:"longV,omitempty"`
	DoubleV float64   `json:"doubleV,omitempty"`
	StringV string    `json:"stringV,omitempty"`
	JSONV   string    `json:"jsonV,omitempty"`
}

// TsKvList groups the values recorded at one timestamp.
type TsKvList struct {
	Ts int64      `json:"ts"`
	Kv []KeyValue `json:"kv"`
}

// PostTelemetryMsg carries time-series values.
type PostTelemetryMsg struct {
	TsKvList []TsKvList `json:"tsKvList"`
}

// PostAttributeMsg carries an attribute set.
type PostAttributeMsg struct {
	Kv []KeyValue `json:"kv"`
}

// AttributeDeleteMsg names attributes to remove from a scope.
type AttributeDeleteMsg struct {
	Scope          string   `json:"scope"`
	AttributeNames []string `json:"attributeNames"`
}

// EntityData describes what changed for one entity.
type EntityData struct {
	EntityType           string              `json:"entityType"`
	EntityIDMSB          int64               `json:"entityIdMSB"`
	EntityIDLSB          int64               `json:"entityIdLSB"`
	PostAttributesMsg    *PostAttributeMsg   `json:"postAttributesMsg,omitempty"`
	PostTelemetryMsg     *PostTelemetryMsg   `json:"postTelemetryMsg,omitempty"`
	AttributesUpdatedMsg *PostAttributeMsg   `json:"attributesUpdatedMsg,omitempty"`
	PostAttributeScope   string              `json:"postAttributeScope,omitempty"`
	AttributeDeleteMsg   *AttributeDeleteMsg `json:"attributeDeleteMsg,omitempty"`
}

// AttributesRequestMsg asks the remote side for the attributes of a scope.
type AttributesRequestMsg struct {
	EntityIDMSB int64  `json:"entityIdMSB"`
	EntityIDLSB int64  `json:"entityIdLSB"`
	EntityType  string `json:"entityType"`
	Scope       string `json:"scope"`
}

// UplinkMsg is the envelope sent to the edge.
type UplinkMsg struct {
	UplinkMsgID          int32                  `json:"uplinkMsgId"`
	EntityData           []EntityData           `json:"entityData,omitempty"`
	AttributesRequestMsg []AttributesRequestMsg `json:"attributesRequestMsg,omitempty"`
}

// Groups returns the timestamp groups in input order.
func (m *PostTelemetryMsg) Groups() []TsKvList {
	if m == nil {
		return nil
	}
	return m.TsKvList
}
