// SPDX-FileCopyrightText: 2026 The guestinit authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"errors"
	"fmt"
)

var (
	// ErrNotPidOne is returned if the process is expected to be run as PID 1
	// but is not.
	ErrNotPidOne = errors.New("process does not have PID 1")
	// ErrPanic is returned if a [Func] panicked.
	ErrPanic = errors.New("boot stage panicked")
)

// MountError is returned when a pseudo file system mount fails.
type MountError struct {
	Path   string
	FSType FSType
	Err    error
}

func (e *MountError) Error() string {
	return fmt.Sprintf("mount %s at %s: %v", e.FSType, e.Path, e.Err)
}

func (e *MountError) Unwrap() error {
	return e.Err
}

// DeviceError is returned when a device node or device symlink cannot be
// created.
type DeviceError struct {
	Path string
	Err  error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("create device %s: %v", e.Path, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// ModuleListError is returned when the kernel module directory cannot be
// enumerated. Individual module load failures are tolerated and never
// produce this error.
type ModuleListError struct {
	Dir string
	Err error
}

func (e *ModuleListError) Error() string {
	return fmt.Sprintf("list modules in %s: %v", e.Dir, e.Err)
}

func (e *ModuleListError) Unwrap() error {
	return e.Err
}

// ShareError is returned when a virtio-fs share cannot be mounted.
type ShareError struct {
	Tag  string
	Path string
	Err  error
}

func (e *ShareError) Error() string {
	return fmt.Sprintf("mount share %s at %s: %v", e.Tag, e.Path, e.Err)
}

func (e *ShareError) Unwrap() error {
	return e.Err
}

// TransitionError is returned when the root transition fails. Mount state
// is not transactional, so a transition error leaves the system in an
// undefined state and boot cannot continue.
type TransitionError struct {
	Step string
	Err  error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("root transition (%s): %v", e.Step, e.Err)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// ExecError is returned when the real init program cannot replace the
// process image.
type ExecError struct {
	Path string
	Err  error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("exec %s: %v", e.Path, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}
