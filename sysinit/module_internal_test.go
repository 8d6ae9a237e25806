// SPDX-FileCopyrightText: 2026 The guestinit authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestParseModuleType(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		expected moduleType
	}{
		{
			name:     "empty",
			fileName: "",
			expected: moduleTypeUnknown,
		},
		{
			name:     "no extension",
			fileName: "module",
			expected: moduleTypeUnknown,
		},
		{
			name:     "other extension",
			fileName: "README.txt",
			expected: moduleTypeUnknown,
		},
		{
			name:     "plain",
			fileName: "virtio_net.ko",
			expected: moduleTypePlain,
		},
		{
			name:     "gzip",
			fileName: "virtio_net.ko.gz",
			expected: moduleTypeGZIP,
		},
		{
			name:     "xz",
			fileName: "virtio_net.ko.xz",
			expected: moduleTypeXZ,
		},
		{
			name:     "zstd",
			fileName: "virtio_net.ko.zst",
			expected: moduleTypeZSTD,
		},
		{
			name:     "extension not at end",
			fileName: "ko.backup",
			expected: moduleTypeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual := parseModuleType(tt.fileName)
			assert.Equal(t, tt.expected, actual)
		})
	}
}

func TestListModuleFiles(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		files, err := listModuleFiles(filepath.Join(t.TempDir(), "missing"))
		require.NoError(t, err)
		assert.Empty(t, files)
	})

	t.Run("not a directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(path, nil, 0o644))

		_, err := listModuleFiles(path)
		require.Error(t, err)
	})

	t.Run("sorted module files only", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"b.ko", "a.ko", "c.txt"} {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, nil, 0o644))
		}

		require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.ko"), 0o755))

		files, err := listModuleFiles(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"a.ko", "b.ko"}, files)
	})
}

// fakeModuleLoader records the content of each module handed to
// init_module. finit_module reports unsupported, so the loader always falls
// back to reading the file.
func fakeModuleLoader(loaded *[]string, initErr error) *ModuleLoader {
	return &ModuleLoader{
		initModule: func(data []byte, _ string) error {
			*loaded = append(*loaded, string(data))
			return initErr
		},
		finitModule: func(_ int, _ string, _ finitFlags) error {
			return errors.ErrUnsupported
		},
	}
}

func TestModuleLoaderLoadAll(t *testing.T) {
	writeModules := func(t *testing.T, contents map[string]string) string {
		t.Helper()

		dir := t.TempDir()
		for name, content := range contents {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		}

		return dir
	}

	t.Run("missing directory succeeds", func(t *testing.T) {
		var loaded []string

		loader := fakeModuleLoader(&loaded, nil)
		err := loader.LoadAll(filepath.Join(t.TempDir(), "missing"), nil)
		require.NoError(t, err)
		assert.Empty(t, loaded)
	})

	t.Run("loads in filename order", func(t *testing.T) {
		dir := writeModules(t, map[string]string{
			"b.ko":     "module-b",
			"a.ko":     "module-a",
			"ignored":  "not a module",
			"10-z.ko":  "module-z",
			"notes.md": "not a module either",
		})

		var loaded []string

		loader := fakeModuleLoader(&loaded, nil)
		err := loader.LoadAll(dir, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"module-z", "module-a", "module-b"}, loaded)
	})

	t.Run("per-module failure is tolerated", func(t *testing.T) {
		dir := writeModules(t, map[string]string{
			"a.ko": "module-a",
			"b.ko": "module-b",
		})

		var loaded []string

		loader := fakeModuleLoader(&loaded, assert.AnError)
		err := loader.LoadAll(dir, nil)
		require.NoError(t, err, "loader must succeed despite module failures")
		assert.Equal(t, []string{"module-a", "module-b"}, loaded,
			"all modules must be attempted")
	})

	t.Run("unreadable directory fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(path, nil, 0o644))

		var loaded []string

		loader := fakeModuleLoader(&loaded, nil)
		err := loader.LoadAll(path, nil)

		var listErr *ModuleListError

		require.ErrorAs(t, err, &listErr)
		assert.Equal(t, path, listErr.Dir)
	})
}

func TestModuleLoaderLoad(t *testing.T) {
	t.Run("finit is preferred", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "a.ko")
		require.NoError(t, os.WriteFile(path, []byte("module-a"), 0o644))

		var finitCalled bool

		loader := &ModuleLoader{
			initModule: func(_ []byte, _ string) error {
				t.Fatal("init_module must not be called")
				return nil
			},
			finitModule: func(_ int, _ string, flags finitFlags) error {
				finitCalled = true

				assert.Zero(t, flags,
					"plain modules must not set the compressed flag")

				return nil
			},
		}

		require.NoError(t, loader.Load(path, ""))
		assert.True(t, finitCalled)
	})

	t.Run("compressed module sets finit flag", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "a.ko.gz")
		require.NoError(t, os.WriteFile(path, []byte("raw"), 0o644))

		loader := &ModuleLoader{
			finitModule: func(_ int, _ string, flags finitFlags) error {
				assert.Equal(t, finitFlagCompressedFile, flags)
				return nil
			},
		}

		require.NoError(t, loader.Load(path, ""))
	})

	t.Run("kernel without finit falls back to init", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "a.ko")
		require.NoError(t, os.WriteFile(path, []byte("module-a"), 0o644))

		var loaded []string

		loader := &ModuleLoader{
			initModule: func(data []byte, _ string) error {
				loaded = append(loaded, string(data))
				return nil
			},
			finitModule: func(_ int, _ string, _ finitFlags) error {
				// The error shape finitModule produces for ENOSYS.
				return fmt.Errorf("finit_module: %w", finitErr(unix.ENOSYS))
			},
		}

		require.NoError(t, loader.Load(path, ""))
		assert.Equal(t, []string{"module-a"}, loaded)
	})

	t.Run("missing file", func(t *testing.T) {
		loader := NewModuleLoader()

		err := loader.Load(filepath.Join(t.TempDir(), "missing.ko"), "")
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}
