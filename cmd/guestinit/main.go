// SPDX-FileCopyrightText: 2026 The guestinit authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// guestinit is the first user-space process in a minimal virtual machine
// guest. It assembles the root file system from virtio-fs shares, provides
// device nodes and kernel modules, switches the process root over and
// replaces itself with the real init program.
//
// It takes no arguments and reads no configuration; the kernel command
// line is the only input. On success it never returns. A fatal boot
// failure is printed to stderr and the process exits with status 1, after
// which the guest kernel panics for lack of a PID 1.
package main

import (
	"os"

	"github.com/mikrovm/guestinit/sysinit"
)

const (
	kernelCmdlinePath = "/proc/cmdline"
	modulesDir        = "/usr/lib/modules"
)

func main() {
	// boot only returns on failure, since the last stage replaces the
	// process image.
	if err := boot(); err != nil {
		sysinit.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func boot() error {
	return sysinit.Run(
		sysinit.WithMountPoints(sysinit.BootMountPoints()),
		sysinit.WithKernelCmdline(
			kernelCmdlinePath,
			sysinit.NewTracer(os.Stdout),
		),
		sysinit.WithDeviceNodes(
			sysinit.StaticDeviceNodes(),
			sysinit.DevSymlinks(),
		),
		sysinit.WithLoopback(),
		sysinit.WithModules(sysinit.NewModuleLoader(), modulesDir),
		sysinit.WithShares(),
		sysinit.WithSwitchRoot(sysinit.SysrootPath),
		sysinit.WithExecInit(),
	)
}
