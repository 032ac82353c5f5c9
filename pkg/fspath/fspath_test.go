// SPDX-License-Identifier: MPL-2.0

package fspath_test

import (
	"path/filepath"
	"testing"

	"github.com/invowk/pansh/pkg/fspath"

	"github.com/spf13/afero"
)

func newMemProvider(t *testing.T) *fspath.FS {
	t.Helper()

	fs := afero.NewMemMapFs()
	for _, dir := range []string{"/home/user/docs", "/home/user/Downloads", "/tmp"} {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("MkdirAll(%q): %v", dir, err)
		}
	}
	for _, file := range []string{"/home/user/notes.txt", "/home/user/.profile"} {
		if err := afero.WriteFile(fs, file, []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile(%q): %v", file, err)
		}
	}
	return fspath.NewFS(fs, func() string { return "/home/user" })
}

func TestFS_Exists(t *testing.T) {
	t.Parallel()

	p := newMemProvider(t)

	tests := []struct {
		path     string
		wantDir  bool
		wantFile bool
	}{
		{"/home/user/docs", true, false},
		{"/home/user/notes.txt", false, true},
		{"/home/user/missing", false, false},
	}
	for _, tt := range tests {
		if got := p.DirectoryExists(tt.path); got != tt.wantDir {
			t.Errorf("DirectoryExists(%q) = %v, want %v", tt.path, got, tt.wantDir)
		}
		if got := p.FileExists(tt.path); got != tt.wantFile {
			t.Errorf("FileExists(%q) = %v, want %v", tt.path, got, tt.wantFile)
		}
	}
}

func TestFS_List(t *testing.T) {
	t.Parallel()

	p := newMemProvider(t)

	dirs, err := p.ListDirectories("/home/user")
	if err != nil {
		t.Fatalf("ListDirectories() error: %v", err)
	}
	if len(dirs) != 2 || dirs[0] != "Downloads" || dirs[1] != "docs" {
		t.Errorf("ListDirectories() = %v, want [Downloads docs]", dirs)
	}

	files, err := p.ListFiles("/home/user")
	if err != nil {
		t.Fatalf("ListFiles() error: %v", err)
	}
	if len(files) != 2 || files[0] != ".profile" || files[1] != "notes.txt" {
		t.Errorf("ListFiles() = %v, want [.profile notes.txt]", files)
	}

	if _, err := p.ListFiles("/nope"); err == nil {
		t.Error("ListFiles() on a missing directory should fail")
	}
}

func TestFS_NameSplitting(t *testing.T) {
	t.Parallel()

	p := fspath.NewFS(afero.NewMemMapFs(), nil)

	tests := []struct {
		path     string
		wantDir  string
		wantFile string
	}{
		{"notes", "", "notes"},
		{"docs/no", "docs", "no"},
		{"docs/", "docs", ""},
		{"/etc", "/", "etc"},
		{"a/b/c", "a/b", "c"},
	}
	for _, tt := range tests {
		if got := p.DirectoryName(tt.path); got != tt.wantDir {
			t.Errorf("DirectoryName(%q) = %q, want %q", tt.path, got, tt.wantDir)
		}
		if got := p.FileName(tt.path); got != tt.wantFile {
			t.Errorf("FileName(%q) = %q, want %q", tt.path, got, tt.wantFile)
		}
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	p := newMemProvider(t)

	if got := fspath.Resolve(p, "/tmp"); got != "/tmp" {
		t.Errorf("Resolve(\"/tmp\") = %q", got)
	}
	want := filepath.Join("/home/user", "docs")
	if got := fspath.Resolve(p, "docs"); got != want {
		t.Errorf("Resolve(\"docs\") = %q, want %q", got, want)
	}
	if !fspath.HasTrailingSeparator(p, "docs/") {
		t.Error("HasTrailingSeparator(\"docs/\") = false")
	}
}
