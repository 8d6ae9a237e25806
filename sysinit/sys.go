// SPDX-FileCopyrightText: 2026 The guestinit authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

type finitFlags int

const finitFlagCompressedFile finitFlags = unix.MODULE_INIT_COMPRESSED_FILE

func mount(source, target, fsType string, flags uintptr, data string) error {
	if err := unix.Mount(source, target, fsType, flags, data); err != nil {
		return fmt.Errorf("mount %s: %w", target, err)
	}

	return nil
}

// moveMount re-parents the mount at source onto target without unmounting
// it. Content and nested mounts are preserved.
func moveMount(source, target string) error {
	err := unix.Mount(source, target, "", unix.MS_MOVE, "")
	if err != nil {
		return fmt.Errorf("move mount %s to %s: %w", source, target, err)
	}

	return nil
}

func unmount(target string) error {
	if err := unix.Unmount(target, 0); err != nil {
		return fmt.Errorf("unmount %s: %w", target, err)
	}

	return nil
}

func mknodChar(path string, major, minor uint32, mode uint32) error {
	dev := unix.Mkdev(major, minor)

	err := unix.Mknod(path, unix.S_IFCHR|mode, int(dev))
	if err != nil {
		return fmt.Errorf("mknod %s: %w", path, err)
	}

	return nil
}

func chdir(path string) error {
	if err := unix.Chdir(path); err != nil {
		return fmt.Errorf("chdir %s: %w", path, err)
	}

	return nil
}

func chroot(path string) error {
	if err := unix.Chroot(path); err != nil {
		return fmt.Errorf("chroot %s: %w", path, err)
	}

	return nil
}

func execve(path string, argv []string, envv []string) error {
	if err := unix.Exec(path, argv, envv); err != nil {
		return fmt.Errorf("execve %s: %w", path, err)
	}

	return nil
}

func initModule(data []byte, params string) error {
	if err := unix.InitModule(data, params); err != nil {
		return fmt.Errorf("init_module: %w", err)
	}

	return nil
}

func finitModule(fd int, params string, flags finitFlags) error {
	if err := unix.FinitModule(fd, params, int(flags)); err != nil {
		return fmt.Errorf("finit_module: %w", finitErr(err))
	}

	return nil
}

// finitErr maps the errnos kernels use to signal a missing finit_module(2)
// (EOPNOTSUPP, or ENOSYS on kernels built without it) to
// [errors.ErrUnsupported], so module loading falls back to init_module(2).
func finitErr(err error) error {
	if errors.Is(err, unix.EOPNOTSUPP) || errors.Is(err, unix.ENOSYS) {
		return errors.ErrUnsupported
	}

	return err
}

func getpid() int {
	return os.Getpid()
}
