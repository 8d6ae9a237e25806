// SPDX-FileCopyrightText: 2026 The guestinit authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"fmt"

	"github.com/mikrovm/guestinit/internal/cmdline"
)

// Func is a single boot stage run by [Run].
type Func func(*State) error

// Run executes the given boot stages strictly in order.
//
// It must be run as PID 1, since the stages manipulate process global
// kernel state (mount table, filesystem root, loaded modules).
//
// A successful boot does not return: the last stage is expected to replace
// the process image. Run returns the first stage error otherwise. There is
// no rollback of earlier stages, since mount state is not transactional; a
// failed boot means the guest is discarded wholesale.
func Run(funcs ...Func) error {
	if !IsPidOne() {
		return ErrNotPidOne
	}

	state := &State{
		Cmdline: cmdline.Parse(""),
		Tracer:  &Tracer{},
	}

	return runFuncs(state, funcs)
}

func runFuncs(state *State, funcs []Func) (err error) {
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}

		if recoveredErr, ok := rec.(error); ok {
			err = fmt.Errorf("%w: %w", ErrPanic, recoveredErr)
		} else {
			err = fmt.Errorf("%w: %v", ErrPanic, rec)
		}
	}()

	for _, fn := range funcs {
		if err = fn(state); err != nil {
			return err
		}
	}

	return nil
}

// IsPidOne returns true if the running process has PID 1.
func IsPidOne() bool {
	return getpid() == 1
}

// WithKernelCmdline returns a boot stage that reads and parses the kernel
// command line from the given file, usually /proc/cmdline. It requires
// /proc to be mounted.
//
// If the command line carries the debug flag, the state's tracer is
// replaced with the given one.
func WithKernelCmdline(path string, debugTracer *Tracer) Func {
	return func(state *State) error {
		parsed, err := cmdline.ReadFile(path)
		if err != nil {
			return err
		}

		state.Cmdline = parsed

		if parsed.Flag(cmdline.KeyDebug) {
			state.Tracer = debugTracer
		}

		state.Tracer.Printf("Kernel command line read from %s", path)

		return nil
	}
}
