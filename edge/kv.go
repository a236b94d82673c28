// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package edge

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/absmach/edgesync/pkg/errors"
)

var (
	// ErrValueType indicates a key/value with an unknown value type.
	ErrValueType = errors.New("unsupported key value type")

	// ErrJSONValue indicates a JSON_V value that is not valid JSON.
	ErrJSONValue = errors.New("invalid JSON value")

	// ErrNotObject indicates a document that is not a JSON object.
	ErrNotObject = errors.New("JSON document is not an object")
)

// Value returns the Go value held by kv. JSON_V values are returned as
// json.RawMessage.
func (kv KeyValue) Value() (interface{}, error) {
	switch kv.Type {
	case BooleanV:
		return kv.BoolV, nil
	case LongV:
		return kv.LongV, nil
	case DoubleV:
		return kv.DoubleV, nil
	case StringV:
		return kv.StringV, nil
	case JSONV:
		if !json.Valid([]byte(kv.JSONV)) {
			return nil, errors.Wrap(ErrJSONValue, fmt.Errorf("key %q", kv.Key))
		}
		return json.RawMessage(kv.JSONV), nil
	default:
		return nil, errors.Wrap(ErrValueType, fmt.Errorf("key %q has type %q", kv.Key, kv.Type))
	}
}

// KeyValuesToJSON encodes kvs as a JSON object keeping the order of first
// appearance. A repeated key keeps its position and takes the last value.
func KeyValuesToJSON(kvs []KeyValue) ([]byte, error) {
	idx := make(map[string]int, len(kvs))
	keys := make([]string, 0, len(kvs))
	vals := make([][]byte, 0, len(kvs))
	for _, kv := range kvs {
		v, err := kv.Value()
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		if i, ok := idx[kv.Key]; ok {
			vals[i] = data
			continue
		}
		idx[kv.Key] = len(keys)
		keys = append(keys, kv.Key)
		vals = append(vals, data)
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(vals[i])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// KeyValuesFromJSON decodes a JSON object into typed key/values in document
// order. Integral numbers become LONG_V, other numbers DOUBLE_V, nested
// objects and arrays JSON_V. Null members are skipped.
func KeyValuesFromJSON(data []byte) ([]KeyValue, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, ErrNotObject
	}

	var kvs []KeyValue
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		kv, ok, err := fromRaw(key, raw)
		if err != nil {
			return nil, err
		}
		if ok {
			kvs = append(kvs, kv)
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return kvs, nil
}

func fromRaw(key string, raw json.RawMessage) (KeyValue, bool, error) {
	kv := KeyValue{Key: key}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return kv, false, nil
	}
	switch trimmed[0] {
	case 'n':
		return kv, false, nil
	case 't', 'f':
		kv.Type = BooleanV
		kv.BoolV = trimmed[0] == 't'
	case '"':
		kv.Type = StringV
		if err := json.Unmarshal(trimmed, &kv.StringV); err != nil {
			return kv, false, err
		}
	case '{', '[':
		kv.Type = JSONV
		kv.JSONV = string(trimmed)
	default:
		n := json.Number(trimmed)
		if l, err := n.Int64(); err == nil {
			kv.Type = LongV
			kv.LongV = l
			break
		}
		d, err := n.Float64()
		if err != nil {
			return kv, false, err
		}
		kv.Type = DoubleV
		kv.DoubleV = d
	}
	return kv, true, nil
}
