// SPDX-License-Identifier: MPL-2.0

// Package fspath answers filesystem questions for highlighting and completion.
//
// Provider is the narrow view of a filesystem the line editor needs. FS
// implements it on top of an afero.Fs so the same code serves the real disk
// and in-memory filesystems in tests.
package fspath

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
)

type (
	// Provider is a read-only view of a filesystem rooted at a working directory.
	// Implementations must not mutate anything; every method is a query.
	Provider interface {
		CurrentDirectory() string
		DirectoryExists(path string) bool
		FileExists(path string) bool
		// ListDirectories returns the names of subdirectories of dir, sorted.
		ListDirectories(dir string) ([]string, error)
		// ListFiles returns the names of non-directory entries of dir, sorted.
		ListFiles(dir string) ([]string, error)
		Combine(base, elem string) string
		// FileName returns the text after the last separator.
		FileName(path string) string
		// DirectoryName returns the text before the last separator, or "" if
		// path has none.
		DirectoryName(path string) string
		IsRooted(path string) bool
		Separator() rune
	}

	// FS implements Provider on an afero filesystem.
	FS struct {
		fs  afero.Fs
		cwd func() string
	}
)

// NewFS creates a Provider over fs. cwd is consulted on every call so the
// provider follows directory changes made by the shell.
func NewFS(fs afero.Fs, cwd func() string) *FS {
	if cwd == nil {
		cwd = func() string { return string(filepath.Separator) }
	}
	return &FS{fs: fs, cwd: cwd}
}

// NewOS creates a Provider over the host filesystem.
func NewOS(cwd func() string) *FS {
	return NewFS(afero.NewOsFs(), cwd)
}

// Fs returns the underlying filesystem.
func (p *FS) Fs() afero.Fs {
	return p.fs
}

// CurrentDirectory returns the working directory.
func (p *FS) CurrentDirectory() string {
	return p.cwd()
}

// DirectoryExists reports whether path names a directory.
func (p *FS) DirectoryExists(path string) bool {
	ok, err := afero.DirExists(p.fs, path)
	return err == nil && ok
}

// FileExists reports whether path names an entry that is not a directory.
func (p *FS) FileExists(path string) bool {
	info, err := p.fs.Stat(path)
	return err == nil && !info.IsDir()
}

// ListDirectories returns the sorted names of subdirectories of dir.
func (p *FS) ListDirectories(dir string) ([]string, error) {
	return p.list(dir, true)
}

// ListFiles returns the sorted names of files in dir.
func (p *FS) ListFiles(dir string) ([]string, error) {
	return p.list(dir, false)
}

func (p *FS) list(dir string, dirs bool) ([]string, error) {
	entries, err := afero.ReadDir(p.fs, dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		isDir := e.IsDir()
		if e.Mode()&os.ModeSymlink != 0 {
			if target, err := p.fs.Stat(filepath.Join(dir, e.Name())); err == nil {
				isDir = target.IsDir()
			}
		}
		if isDir == dirs {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

// Combine joins base and elem.
func (p *FS) Combine(base, elem string) string {
	return filepath.Join(base, elem)
}

// FileName returns the final element of path without cleaning it, so a
// trailing separator yields "".
func (p *FS) FileName(path string) string {
	if i := lastSeparator(path); i >= 0 {
		return path[i+1:]
	}
	return path
}

// DirectoryName returns path up to its last separator.
func (p *FS) DirectoryName(path string) string {
	switch i := lastSeparator(path); {
	case i < 0:
		return ""
	case i == 0:
		return path[:1]
	default:
		return path[:i]
	}
}

// IsRooted reports whether path is absolute.
func (p *FS) IsRooted(path string) bool {
	return filepath.IsAbs(path) || strings.HasPrefix(path, "/")
}

// Separator returns the platform path separator.
func (p *FS) Separator() rune {
	return filepath.Separator
}

// Resolve makes path absolute against the provider's working directory.
func Resolve(p Provider, path string) string {
	if p.IsRooted(path) {
		return path
	}
	return p.Combine(p.CurrentDirectory(), path)
}

// HasTrailingSeparator reports whether path ends in '/' or the provider's separator.
func HasTrailingSeparator(p Provider, path string) bool {
	return strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(p.Separator()))
}

func lastSeparator(path string) int {
	return strings.LastIndexAny(path, `/\`)
}
