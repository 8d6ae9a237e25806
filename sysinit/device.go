// SPDX-FileCopyrightText: 2026 The guestinit authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
)

// DeviceNode is a static character device.
type DeviceNode struct {
	Path  string
	Major uint32
	Minor uint32
	Mode  uint32
}

// Symlinks is a collection of symbolic links. Keys are symbolic links to
// create with the value being the target to link to.
type Symlinks map[string]string

// StaticDeviceNodes returns the character devices created during boot.
//
// devtmpfs provides most nodes by itself, but devices whose drivers are not
// loaded yet, or that guests probe before loading the driver, need static
// nodes.
func StaticDeviceNodes() []DeviceNode {
	return []DeviceNode{
		{Path: "/dev/kvm", Major: 10, Minor: 232, Mode: 0o660},
		{Path: "/dev/loop-control", Major: 10, Minor: 237, Mode: 0o660},
		{Path: "/dev/fuse", Major: 10, Minor: 229, Mode: 0o666},
	}
}

// DevSymlinks returns the well-known standard stream symlinks for /dev.
func DevSymlinks() Symlinks {
	return Symlinks{
		"/dev/fd":     "/proc/self/fd",
		"/dev/stdin":  "/proc/self/fd/0",
		"/dev/stdout": "/proc/self/fd/1",
		"/dev/stderr": "/proc/self/fd/2",
	}
}

// CreateDeviceNodes creates the given character devices.
//
// Parent directories below /dev are created first, so nested entries like
// /dev/vfio/vfio work.
func CreateDeviceNodes(nodes []DeviceNode) error {
	for _, node := range nodes {
		if parent := filepath.Dir(node.Path); parent != "/dev" {
			if err := os.MkdirAll(parent, defaultDirMode); err != nil {
				return &DeviceError{
					Path: node.Path,
					Err:  fmt.Errorf("mkdir %s: %w", parent, err),
				}
			}
		}

		err := mknodChar(node.Path, node.Major, node.Minor, node.Mode)
		if err != nil {
			return &DeviceError{Path: node.Path, Err: err}
		}
	}

	return nil
}

// CreateSymlinks creates the given symbolic links, in lexicographic order
// of the link paths so creation order is deterministic.
//
// This must be run after the file systems holding the link locations have
// been mounted.
func CreateSymlinks(symlinks Symlinks) error {
	for _, link := range slices.Sorted(maps.Keys(symlinks)) {
		target := symlinks[link]

		if err := os.Symlink(target, link); err != nil {
			return &DeviceError{
				Path: link,
				Err:  fmt.Errorf("symlink: %w", err),
			}
		}
	}

	return nil
}

// WithDeviceNodes returns a boot stage that wraps [CreateDeviceNodes] and
// [CreateSymlinks]. It requires /dev and /proc to be mounted.
func WithDeviceNodes(nodes []DeviceNode, symlinks Symlinks) Func {
	return func(state *State) error {
		state.Tracer.Printf("Creating static device nodes")

		if err := CreateDeviceNodes(nodes); err != nil {
			return err
		}

		return CreateSymlinks(symlinks)
	}
}
