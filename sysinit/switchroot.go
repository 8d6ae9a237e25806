// SPDX-FileCopyrightText: 2026 The guestinit authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"os"
	"path/filepath"
)

// SurvivingMountPoints returns the mounts that are moved into the new root
// if it provides a matching directory. Mounts without one are unmounted in
// place, discarding the file system.
func SurvivingMountPoints() []string {
	return []string{"/run", "/dev", "/proc", "/sys", "/tmp"}
}

type mountRelocation struct {
	source string
	target string
	move   bool
}

// planRelocations decides for each surviving mount whether it is moved into
// the new root or unmounted. The decision depends only on whether the new
// root provides a matching directory, probed via dirExists.
func planRelocations(
	newRoot string,
	mountPoints []string,
	dirExists func(string) bool,
) []mountRelocation {
	relocations := make([]mountRelocation, len(mountPoints))

	for idx, mountPoint := range mountPoints {
		target := filepath.Join(newRoot, mountPoint)
		relocations[idx] = mountRelocation{
			source: mountPoint,
			target: target,
			move:   dirExists(target),
		}
	}

	return relocations
}

// RelocateMounts moves each surviving mount into the new root if a matching
// directory exists there, and unmounts it otherwise.
func RelocateMounts(newRoot string, mountPoints []string, tracer *Tracer) error {
	relocations := planRelocations(newRoot, mountPoints, dirExists)

	for _, relocation := range relocations {
		if relocation.move {
			tracer.Printf("Moving %s to %s", relocation.source, relocation.target)

			if err := moveMount(relocation.source, relocation.target); err != nil {
				return &TransitionError{Step: "move mounts", Err: err}
			}

			continue
		}

		tracer.Printf("Unmounting %s", relocation.source)

		if err := unmount(relocation.source); err != nil {
			return &TransitionError{Step: "unmount", Err: err}
		}
	}

	return nil
}

// SwitchRoot makes the given directory the process root.
//
// The working directory is changed to the new root, the new root is
// move-mounted onto "/", and the chroot/chdir pair makes it the process
// root. A handle on the old root is held open across the switch so the
// kernel never sees a dangling root reference mid-transition.
func SwitchRoot(newRoot string) error {
	if err := chdir(newRoot); err != nil {
		return &TransitionError{Step: "enter new root", Err: err}
	}

	oldRoot, err := os.Open("/")
	if err != nil {
		return &TransitionError{Step: "open old root", Err: err}
	}
	defer oldRoot.Close()

	if err := moveMount(".", "/"); err != nil {
		return &TransitionError{Step: "move root mount", Err: err}
	}

	if err := chroot("."); err != nil {
		return &TransitionError{Step: "chroot", Err: err}
	}

	if err := chdir("/"); err != nil {
		return &TransitionError{Step: "enter root", Err: err}
	}

	return nil
}

// WithSwitchRoot returns a boot stage that relocates the surviving mounts
// into the given directory and then makes it the process root.
//
// Afterwards the five pseudo file systems are available under the new root
// wherever it provided mountpoints for them, and no mount from the old root
// remains mounted elsewhere.
func WithSwitchRoot(newRoot string) Func {
	return func(state *State) error {
		err := RelocateMounts(newRoot, SurvivingMountPoints(), state.Tracer)
		if err != nil {
			return err
		}

		state.Tracer.Printf("Switching root to %s", newRoot)

		return SwitchRoot(newRoot)
	}
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
