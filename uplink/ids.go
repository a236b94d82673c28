// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package uplink

import (
	"math"
	"sync/atomic"
)

// IDGenerator yields positive uplink message ids. After math.MaxInt32 the
// sequence restarts at 1.
type IDGenerator struct {
	last atomic.Int32
}

var defaultIDs = &IDGenerator{}

// DefaultIDs returns the process-wide generator.
func DefaultIDs() *IDGenerator {
	return defaultIDs
}

// NewIDGenerator returns a generator whose first id follows last.
func NewIDGenerator(last int32) *IDGenerator {
	g := &IDGenerator{}
	g.last.Store(last)
	return g
}

// Next returns the next id. It is safe for concurrent use.
func (g *IDGenerator) Next() int32 {
	for {
		cur := g.last.Load()
		next := int32(1)
		if cur > 0 && cur < math.MaxInt32 {
			next = cur + 1
		}
		if g.last.CompareAndSwap(cur, next) {
			return next
		}
	}
}
