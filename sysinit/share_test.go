// SPDX-FileCopyrightText: 2026 The guestinit authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit_test

import (
	"testing"

	"github.com/mikrovm/guestinit/internal/cmdline"
	"github.com/mikrovm/guestinit/sysinit"
	"github.com/stretchr/testify/assert"
)

func TestRootShare(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected sysinit.Share
	}{
		{
			name: "default tag",
			raw:  "console=ttyS0",
			expected: sysinit.Share{
				Tag:      "rootfs",
				Path:     "/sysroot",
				ReadOnly: true,
			},
		},
		{
			name: "tag from command line",
			raw:  "rootfs=myvol",
			expected: sysinit.Share{
				Tag:      "myvol",
				Path:     "/sysroot",
				ReadOnly: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual := sysinit.RootShare(cmdline.Parse(tt.raw))
			assert.Equal(t, tt.expected, actual)
		})
	}
}

func TestAuxiliaryShares(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []sysinit.Share
	}{
		{
			name: "no shares",
			raw:  "rootfs=root debug",
		},
		{
			name: "command line order with read-only tagging",
			raw:  "mount=a mount-ro=b mount=c",
			expected: []sysinit.Share{
				{Tag: "a", Path: "/run/mnt/a"},
				{Tag: "b", Path: "/run/mnt/b", ReadOnly: true},
				{Tag: "c", Path: "/run/mnt/c"},
			},
		},
		{
			name: "duplicate tags map to the same path",
			raw:  "mount=data mount-ro=data",
			expected: []sysinit.Share{
				{Tag: "data", Path: "/run/mnt/data"},
				{Tag: "data", Path: "/run/mnt/data", ReadOnly: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual := sysinit.AuxiliaryShares(cmdline.Parse(tt.raw))
			if tt.expected == nil {
				assert.Empty(t, actual)
				return
			}

			assert.Equal(t, tt.expected, actual)
		})
	}
}
