// SPDX-FileCopyrightText: 2026 The guestinit authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/mikrovm/guestinit/internal/cmdline"
)

const (
	// DefaultRootTag is the virtio-fs tag of the root share if the
	// command line does not name one.
	DefaultRootTag = "rootfs"

	// SysrootPath is where the root share is mounted before the root
	// transition.
	SysrootPath = "/sysroot"

	// ShareMountDir is the directory auxiliary shares are mounted under.
	ShareMountDir = "/run/mnt"
)

// Share is a single virtio-fs share to mount.
type Share struct {
	// Tag is the virtio-fs tag the hypervisor exposes the share under.
	Tag string

	// Path is the mount target.
	Path string

	// ReadOnly mounts the share read-only.
	ReadOnly bool
}

// RootShare returns the root file system share for the given command line.
func RootShare(line *cmdline.Cmdline) Share {
	return Share{
		Tag:      line.GetDefault(cmdline.KeyRootFS, DefaultRootTag),
		Path:     SysrootPath,
		ReadOnly: true,
	}
}

// AuxiliaryShares returns the shares requested via mount= and mount-ro=
// parameters, in command-line order.
//
// Tags are not deduplicated. A repeated tag produces a second mount attempt
// at the same path, which fails fast instead of being silently ignored.
func AuxiliaryShares(line *cmdline.Cmdline) []Share {
	mounts := line.Mounts()
	shares := make([]Share, len(mounts))

	for idx, mnt := range mounts {
		shares[idx] = Share{
			Tag:      mnt.Tag,
			Path:     filepath.Join(ShareMountDir, mnt.Tag),
			ReadOnly: mnt.ReadOnly,
		}
	}

	return shares
}

// MountShare mounts the given virtio-fs share.
//
// The mount target is created if it does not exist.
func MountShare(share Share) error {
	err := os.MkdirAll(share.Path, defaultDirMode)
	if err != nil {
		return &ShareError{
			Tag:  share.Tag,
			Path: share.Path,
			Err:  fmt.Errorf("mkdir: %w", err),
		}
	}

	var flags uintptr
	if share.ReadOnly {
		flags = unix.MS_RDONLY
	}

	err = mount(share.Tag, share.Path, string(FSTypeVirtioFS), flags, "")
	if err != nil {
		return &ShareError{Tag: share.Tag, Path: share.Path, Err: err}
	}

	return nil
}

// WithShares returns a boot stage that mounts the root share at /sysroot
// and every auxiliary share below /run/mnt.
//
// Any share mount failure is fatal: without the root share, boot cannot
// proceed, and a missing auxiliary share means the guest was misconfigured.
func WithShares() Func {
	return func(state *State) error {
		shares := append(
			[]Share{RootShare(state.Cmdline)},
			AuxiliaryShares(state.Cmdline)...,
		)

		for _, share := range shares {
			state.Tracer.Printf(
				"Mounting share %s at %s (read-only: %t)",
				share.Tag, share.Path, share.ReadOnly,
			)

			if err := MountShare(share); err != nil {
				return err
			}
		}

		return nil
	}
}
