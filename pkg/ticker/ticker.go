// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package ticker abstracts time.Ticker so periodic loops can be driven by
// tests.
package ticker

import "time"

// Ticker delivers ticks until stopped.
type Ticker interface {
	Tick() <-chan time.Time
	Stop()
}

type timeTicker struct {
	*time.Ticker
}

// NewTicker returns a Ticker backed by time.Ticker.
func NewTicker(d time.Duration) Ticker {
	return &timeTicker{time.NewTicker(d)}
}

func (t *timeTicker) Tick() <-chan time.Time {
	return t.C
}
