// SPDX-FileCopyrightText: 2026 The guestinit authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"github.com/mikrovm/guestinit/internal/cmdline"
)

// State is shared between all boot stages of a [Run].
type State struct {
	// Cmdline is the parsed kernel command line. It is set by
	// [WithKernelCmdline] and empty before that stage ran.
	Cmdline *cmdline.Cmdline

	// Tracer emits verbose traces. It is never nil during a [Run] and is
	// swapped for an enabled one when the command line carries the debug
	// flag.
	Tracer *Tracer
}
