// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package logger

import "os"

// ExitWithError terminates the process with *code when it is not zero. It is
// meant to be deferred first in main so that other defers run before exit.
func ExitWithError(code *int) {
	if *code != 0 {
		os.Exit(*code)
	}
}
