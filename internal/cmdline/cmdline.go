// SPDX-FileCopyrightText: 2026 The guestinit authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cmdline parses the kernel command line.
//
// The kernel command line is a single line of whitespace separated
// parameters. A parameter is either a bare flag ("debug") or a key value
// pair ("rootfs=myvol"). There is no quoting or escaping. Parsing is total:
// any input produces a valid, possibly empty, result.
package cmdline

import (
	"fmt"
	"os"
	"strings"
)

// Keys recognized during boot.
const (
	KeyDebug  = "debug"
	KeyRootFS = "rootfs"
	KeyInit   = "init"

	mountPrefix   = "mount="
	mountROPrefix = "mount-ro="
)

// Mount is a single share mount request taken from a "mount=" or
// "mount-ro=" parameter.
type Mount struct {
	// Tag is the virtio-fs tag of the share.
	Tag string

	// ReadOnly is set for "mount-ro=" parameters.
	ReadOnly bool
}

// Cmdline is a parsed kernel command line.
//
// The zero value behaves like an empty command line.
type Cmdline struct {
	params []string
}

// Parse parses the given raw command line. It never fails.
func Parse(raw string) *Cmdline {
	return &Cmdline{
		params: strings.Fields(raw),
	}
}

// ReadFile reads and parses the command line from the given file, usually
// /proc/cmdline.
func ReadFile(path string) (*Cmdline, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return Parse(strings.TrimSpace(string(raw))), nil
}

// Get looks up the given key. The first occurrence wins.
//
// For a key value pair the value is returned. For a bare flag the value is
// empty with ok set. Absent keys return ok unset, never an error.
func (c *Cmdline) Get(key string) (string, bool) {
	for _, param := range c.params {
		if param == key {
			return "", true
		}

		if value, found := strings.CutPrefix(param, key+"="); found {
			return value, true
		}
	}

	return "", false
}

// GetDefault looks up the given key and falls back to the given default
// value if the key is absent.
func (c *Cmdline) GetDefault(key, fallback string) string {
	if value, ok := c.Get(key); ok {
		return value
	}

	return fallback
}

// Flag returns whether the given key is present, either as bare flag or as
// key value pair.
func (c *Cmdline) Flag(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Mounts returns all share mount requests in command-line order.
//
// Keys may repeat and are not deduplicated. Empty tags are skipped.
func (c *Cmdline) Mounts() []Mount {
	var mounts []Mount

	for _, param := range c.params {
		if tag, found := strings.CutPrefix(param, mountPrefix); found {
			if tag != "" {
				mounts = append(mounts, Mount{Tag: tag})
			}

			continue
		}

		if tag, found := strings.CutPrefix(param, mountROPrefix); found {
			if tag != "" {
				mounts = append(mounts, Mount{Tag: tag, ReadOnly: true})
			}
		}
	}

	return mounts
}
