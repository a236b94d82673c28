// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package env loads service configuration from environment variables.
package env

import "github.com/caarlos0/env/v7"

// Options narrows the set of variables a Parse call reads.
type Options struct {
	// Environment replaces the process environment, mostly useful in tests.
	Environment map[string]string

	// Prefix is prepended to every key.
	Prefix string

	// RequiredIfNoDef marks every field without an envDefault as required.
	RequiredIfNoDef bool
}

// Parse fills v from the environment according to its env struct tags.
func Parse(v interface{}, opts ...Options) error {
	altOpts := make([]env.Options, 0, len(opts))
	for _, opt := range opts {
		altOpts = append(altOpts, env.Options{
			Environment:     opt.Environment,
			Prefix:          opt.Prefix,
			RequiredIfNoDef: opt.RequiredIfNoDef,
		})
	}

	return env.Parse(v, altOpts...)
}
