// SPDX-FileCopyrightText: 2026 The guestinit authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package sysinit assembles a minimal virtual machine guest from the bare
// kernel-started state to the point where the real init program runs.
//
// Each boot stage is a [Func] that operates on a shared [State]. [Run]
// executes the stages strictly in order and stops at the first fatal
// error. The final stage replaces the process image, so a successful boot
// never returns.
package sysinit
