// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package logger

var _ Logger = (*loggerMock)(nil)

type loggerMock struct{}

// NewMock returns a logger that discards everything.
func NewMock() Logger {
	return &loggerMock{}
}

func (l loggerMock) Debug(string) {}

func (l loggerMock) Info(string) {}

func (l loggerMock) Warn(string) {}

func (l loggerMock) Error(string) {}

func (l loggerMock) Fatal(string) {}
