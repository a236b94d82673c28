// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package uplink_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/absmach/edgesync/logger"
	"github.com/absmach/edgesync/uplink"
	"github.com/stretchr/testify/assert"
)

type manualTicker struct {
	c       chan time.Time
	stopped atomic.Bool
}

func (t *manualTicker) Tick() <-chan time.Time { return t.c }

func (t *manualTicker) Stop() { t.stopped.Store(true) }

type countingForwarder struct {
	calls atomic.Int32
	err   error
}

func (f *countingForwarder) Forward(context.Context) (int, error) {
	f.calls.Add(1)
	return 1, f.err
}

func TestRun(t *testing.T) {
	cases := []struct {
		desc string
		err  error
	}{
		{desc: "run forwarding loop"},
		{desc: "run forwarding loop with failures", err: uplink.ErrPublish},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			tick := &manualTicker{c: make(chan time.Time)}
			fw := &countingForwarder{err: tc.err}
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error)
			go func() {
				done <- uplink.Run(ctx, fw, tick, logger.NewMock())
			}()

			for i := 0; i < 3; i++ {
				tick.c <- time.Now()
			}
			cancel()
			assert.Nil(t, <-done)
			assert.Equal(t, int32(3), fw.calls.Load())
			assert.True(t, tick.stopped.Load())
		})
	}
}
