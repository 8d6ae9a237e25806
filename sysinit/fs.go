// SPDX-FileCopyrightText: 2026 The guestinit authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// FSType is a file system type.
type FSType string

// File system types used during boot.
const (
	FSTypeDevTmp   FSType = "devtmpfs"
	FSTypeProc     FSType = "proc"
	FSTypeSys      FSType = "sysfs"
	FSTypeTmp      FSType = "tmpfs"
	FSTypeVirtioFS FSType = "virtiofs"

	defaultDirMode = 0o755
)

// MountPoint is a single pseudo file system mount.
type MountPoint struct {
	// Path is the mount target. It is created if it does not exist.
	Path string

	// FSType is the file system type. The mount source is set to the same
	// string, as is custom for pseudo file systems.
	FSType FSType

	// Flags are mount flags as defined by mount(2).
	Flags uintptr

	// Data are additional type dependent mount parameters.
	Data string
}

// BootMountPoints returns the pseudo file systems required before anything
// else can happen, in mount order.
//
// The order is load bearing: /dev must be mounted before device nodes are
// created and /proc before the kernel command line can be read.
func BootMountPoints() []MountPoint {
	return []MountPoint{
		{
			Path:   "/sys",
			FSType: FSTypeSys,
			Flags:  unix.MS_NOSUID | unix.MS_NOEXEC | unix.MS_NODEV,
		},
		{
			Path:   "/dev",
			FSType: FSTypeDevTmp,
			Flags:  unix.MS_NOSUID,
			Data:   "seclabel,mode=0755,size=4m",
		},
		{
			Path:   "/proc",
			FSType: FSTypeProc,
			Flags:  unix.MS_NOSUID | unix.MS_NOEXEC | unix.MS_NODEV,
		},
		{
			Path:   "/run",
			FSType: FSTypeTmp,
			Flags:  unix.MS_NOSUID | unix.MS_NODEV,
			Data:   "seclabel,mode=0755,size=64m",
		},
		{
			Path:   "/tmp",
			FSType: FSTypeTmp,
			Flags:  unix.MS_NOSUID | unix.MS_NODEV,
			Data:   "seclabel,mode=0755,size=128m",
		},
	}
}

// Mount mounts the given pseudo file system.
//
// The target directory is created if it does not exist.
func Mount(mountPoint MountPoint) error {
	err := os.MkdirAll(mountPoint.Path, defaultDirMode)
	if err != nil {
		return &MountError{
			Path:   mountPoint.Path,
			FSType: mountPoint.FSType,
			Err:    fmt.Errorf("mkdir: %w", err),
		}
	}

	err = mount(
		string(mountPoint.FSType),
		mountPoint.Path,
		string(mountPoint.FSType),
		mountPoint.Flags,
		mountPoint.Data,
	)
	if err != nil {
		return &MountError{
			Path:   mountPoint.Path,
			FSType: mountPoint.FSType,
			Err:    err,
		}
	}

	return nil
}

// MountAll mounts the given pseudo file systems in the order given.
//
// Any failure is fatal, since these file systems are load bearing for
// everything that follows.
func MountAll(mountPoints []MountPoint) error {
	for _, mountPoint := range mountPoints {
		if err := Mount(mountPoint); err != nil {
			return err
		}
	}

	return nil
}

// WithMountPoints returns a boot stage that wraps [MountAll].
func WithMountPoints(mountPoints []MountPoint) Func {
	return func(state *State) error {
		for _, mountPoint := range mountPoints {
			state.Tracer.Printf("Mounting %s", mountPoint.Path)

			if err := Mount(mountPoint); err != nil {
				return err
			}
		}

		return nil
	}
}
