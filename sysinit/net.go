// SPDX-FileCopyrightText: 2026 The guestinit authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"fmt"
	"log"

	"github.com/vishvananda/netlink"
)

// ConfigureLoopbackInterface brings the loopback interface up.
//
// The kernel configures the addresses automatically.
func ConfigureLoopbackInterface() error {
	link, err := netlink.LinkByName("lo")
	if err != nil {
		return fmt.Errorf("get loopback link: %w", err)
	}

	if err := netlink.LinkSetUp(link); err != nil {
		return fmt.Errorf("set loopback up: %w", err)
	}

	return nil
}

// WithLoopback returns a boot stage that brings the loopback interface up.
//
// A failure is logged and tolerated. Loopback is a convenience for the real
// init, not part of the load-bearing boot path.
func WithLoopback() Func {
	return func(state *State) error {
		state.Tracer.Printf("Bringing loopback interface up")

		if err := ConfigureLoopbackInterface(); err != nil {
			log.Printf("WARN loopback: %v", err)
		}

		return nil
	}
}
