// SPDX-FileCopyrightText: 2026 The guestinit authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const (
	moduleTypeUnknown moduleType = ""
	moduleTypePlain   moduleType = ".ko"
	moduleTypeGZIP    moduleType = ".ko.gz"
	moduleTypeXZ      moduleType = ".ko.xz"
	moduleTypeZSTD    moduleType = ".ko.zst"
)

type moduleType string

func parseModuleType(fileName string) moduleType {
	types := []moduleType{
		moduleTypePlain,
		moduleTypeGZIP,
		moduleTypeXZ,
		moduleTypeZSTD,
	}

	for _, typ := range types {
		if strings.HasSuffix(fileName, string(typ)) {
			return typ
		}
	}

	return moduleTypeUnknown
}

// ModuleLoader inserts kernel modules into the running kernel.
//
// It is the single place raw module-insertion syscalls happen. The rest of
// the orchestration deals in ordinary function calls, so tests can inject
// recording or failing implementations.
type ModuleLoader struct {
	initModule  func(data []byte, params string) error
	finitModule func(fd int, params string, flags finitFlags) error
}

// NewModuleLoader creates a loader backed by the native module-insertion
// syscalls.
func NewModuleLoader() *ModuleLoader {
	return &ModuleLoader{
		initModule:  initModule,
		finitModule: finitModule,
	}
}

// LoadAll loads all kernel modules found in the given directory, ordered
// bytewise ascending by filename, so load order is reproducible for
// identical directory contents.
//
// A missing directory is not an error: there are no modules to load. A
// module that fails to load is logged and skipped, since later modules, or
// the system overall, may still function. LoadAll fails only if the
// directory cannot be enumerated.
func (l *ModuleLoader) LoadAll(dir string, tracer *Tracer) error {
	files, err := listModuleFiles(dir)
	if err != nil {
		return &ModuleListError{Dir: dir, Err: err}
	}

	for _, file := range files {
		path := filepath.Join(dir, file)
		tracer.Printf("Loading module %s", path)

		if err := l.Load(path, ""); err != nil {
			log.Printf("WARN load module %s: %v", path, err)
		}
	}

	return nil
}

// Load loads the kernel module located at the given path with the given
// parameters.
//
// The file may be compressed. The caller is responsible to ensure the
// module belongs to the running kernel and all dependencies are satisfied.
func (l *ModuleLoader) Load(path string, params string) error {
	module, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer module.Close()

	return l.load(module, params)
}

func (l *ModuleLoader) load(module *os.File, params string) error {
	typ := parseModuleType(module.Name())

	// Try finit_module(2) first, as it is the more comfortable syscall. If
	// it is not available try again with init_module(2).
	err := l.finitModule(int(module.Fd()), params, finitFlagsFor(typ))
	if !errors.Is(err, errors.ErrUnsupported) {
		return err
	}

	moduleReader, err := newModuleReader(module, typ)
	if err != nil {
		return fmt.Errorf("module reader: %w", err)
	}

	var data bytes.Buffer

	_, err = data.ReadFrom(moduleReader)
	if err != nil {
		return fmt.Errorf("read module: %w", err)
	}

	return l.initModule(data.Bytes(), params)
}

// listModuleFiles returns the names of all regular module files in the
// given directory, sorted bytewise ascending.
//
// A missing directory yields an empty list.
func listModuleFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, err
	}

	var files []string

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		if parseModuleType(entry.Name()) == moduleTypeUnknown {
			continue
		}

		files = append(files, entry.Name())
	}

	slices.Sort(files)

	return files, nil
}

func newModuleReader(fileReader io.Reader, typ moduleType) (io.Reader, error) {
	switch typ {
	case moduleTypePlain:
		return fileReader, nil
	case moduleTypeGZIP:
		gzipReader, err := gzip.NewReader(fileReader)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}

		return gzipReader, nil
	default:
		return nil, fmt.Errorf("extension %s: %w", typ, errors.ErrUnsupported)
	}
}

func finitFlagsFor(typ moduleType) finitFlags {
	var flags finitFlags

	if isSupportedFinitCompressionType(typ) {
		flags |= finitFlagCompressedFile
	}

	return flags
}

// isSupportedFinitCompressionType checks if the given extension is one of
// the known extensions finit_module(2) supports.
func isSupportedFinitCompressionType(typ moduleType) bool {
	supportedTypes := []moduleType{
		moduleTypeGZIP,
		moduleTypeXZ,
		moduleTypeZSTD,
	}

	return slices.Contains(supportedTypes, typ)
}

// WithModules returns a boot stage that loads all kernel modules from the
// given directory. It requires /proc and /sys to be mounted, since module
// dependencies may reference them.
func WithModules(loader *ModuleLoader, dir string) Func {
	return func(state *State) error {
		return loader.LoadAll(dir, state.Tracer)
	}
}
