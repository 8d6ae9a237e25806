// SPDX-FileCopyrightText: 2026 The guestinit authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"os"
	"path/filepath"

	"github.com/mikrovm/guestinit/internal/cmdline"
)

// DefaultInitPath is executed if the command line does not name an init
// program.
const DefaultInitPath = "/bin/sh"

// InitArgv0 derives argv[0] for the given init program path: its final
// path component, or the full path if it has none.
func InitArgv0(path string) string {
	if base := filepath.Base(path); base != "." && base != string(filepath.Separator) {
		return base
	}

	return path
}

// ExecInit replaces the current process image with the given init program,
// passing only argv[0] and the inherited environment.
//
// It does not return on success. After the root transition an exec failure
// is unrecoverable: the process exits, the guest kernel loses PID 1 and
// panics. That is inherent to the architecture, not something to
// compensate for.
func ExecInit(path string) error {
	err := execve(path, []string{InitArgv0(path)}, os.Environ())
	if err != nil {
		return &ExecError{Path: path, Err: err}
	}

	return nil
}

// WithExecInit returns the final boot stage: it resolves the init program
// from the init= command-line key and replaces the process image.
func WithExecInit() Func {
	return func(state *State) error {
		path := state.Cmdline.GetDefault(cmdline.KeyInit, DefaultInitPath)

		state.Tracer.Printf("Executing init %s", path)

		return ExecInit(path)
	}
}
