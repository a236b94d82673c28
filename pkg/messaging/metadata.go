// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Metadata is a string map that remembers key insertion order. Setting an
// existing key replaces its value in place.
type Metadata struct {
	keys   []string
	values map[string]string
}

// NewMetadata returns empty metadata.
func NewMetadata() *Metadata {
	return &Metadata{values: make(map[string]string)}
}

// Put sets key to value.
func (md *Metadata) Put(key, value string) {
	if md.values == nil {
		md.values = make(map[string]string)
	}
	if _, ok := md.values[key]; !ok {
		md.keys = append(md.keys, key)
	}
	md.values[key] = value
}

// Get returns the value stored under key.
func (md *Metadata) Get(key string) (string, bool) {
	if md == nil {
		return "", false
	}
	v, ok := md.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (md *Metadata) Keys() []string {
	if md == nil {
		return nil
	}
	return append([]string(nil), md.keys...)
}

// Len returns the number of entries.
func (md *Metadata) Len() int {
	if md == nil {
		return 0
	}
	return len(md.keys)
}

// Copy returns an independent copy of md.
func (md *Metadata) Copy() *Metadata {
	cp := NewMetadata()
	if md == nil {
		return cp
	}
	cp.keys = append(cp.keys, md.keys...)
	for k, v := range md.values {
		cp.values[k] = v
	}
	return cp
}

// Map returns the entries as a plain map.
func (md *Metadata) Map() map[string]string {
	ret := make(map[string]string, md.Len())
	if md == nil {
		return ret
	}
	for k, v := range md.values {
		ret[k] = v
	}
	return ret
}

// MarshalJSON encodes the entries as a JSON object in insertion order.
func (md *Metadata) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range md.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(md.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object of strings keeping the document order.
func (md *Metadata) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("metadata must be a JSON object, got %v", tok)
	}
	*md = Metadata{values: make(map[string]string)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var val string
		if err := dec.Decode(&val); err != nil {
			return err
		}
		md.Put(key, val)
	}
	_, err = dec.Token()
	return err
}
