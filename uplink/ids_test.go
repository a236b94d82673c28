// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package uplink_test

import (
	"math"
	"sync"
	"testing"

	"github.com/absmach/edgesync/uplink"
	"github.com/stretchr/testify/assert"
)

func TestNext(t *testing.T) {
	cases := []struct {
		desc string
		last int32
		ids  []int32
	}{
		{desc: "start from zero", last: 0, ids: []int32{1, 2, 3}},
		{desc: "wrap after max", last: math.MaxInt32 - 1, ids: []int32{math.MaxInt32, 1, 2}},
		{desc: "restart after negative", last: -5, ids: []int32{1, 2}},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			g := uplink.NewIDGenerator(tc.last)
			for _, id := range tc.ids {
				assert.Equal(t, id, g.Next())
			}
		})
	}
}

func TestNextConcurrent(t *testing.T) {
	const (
		workers = 8
		perWork = 1000
	)
	g := uplink.NewIDGenerator(math.MaxInt32 - workers*perWork/2)

	var (
		mu   sync.Mutex
		seen = make(map[int32]bool, workers*perWork)
		wg   sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWork; j++ {
				id := g.Next()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWork, "ids must not repeat")
	for id := range seen {
		assert.Greater(t, id, int32(0))
	}
}
