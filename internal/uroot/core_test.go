// SPDX-License-Identifier: MPL-2.0

package uroot

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runIn runs a default command in dir and returns its stdout.
func runIn(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	ctx := WithHandlerContext(context.Background(), &HandlerContext{
		Stdin:     strings.NewReader(""),
		Stdout:    &stdout,
		Stderr:    &stderr,
		Dir:       dir,
		LookupEnv: os.LookupEnv,
	})
	err := DefaultRegistry.Run(ctx, args[0], args)
	return stdout.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
}

func TestLs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "file1.txt"), "content")
	writeFile(t, filepath.Join(dir, "file2.txt"), "content")
	if err := os.Mkdir(filepath.Join(dir, "subdir"), 0o755); err != nil {
		t.Fatal(err)
	}

	out, err := runIn(t, dir, "ls")
	if err != nil {
		t.Fatalf("ls returned error: %v", err)
	}
	for _, name := range []string{"file1.txt", "file2.txt", "subdir"} {
		if !strings.Contains(out, name) {
			t.Errorf("ls output should contain %q, got: %s", name, out)
		}
	}
}

func TestCat(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "alpha\n")
	writeFile(t, filepath.Join(dir, "b.txt"), "beta\n")

	out, err := runIn(t, dir, "cat", "a.txt", "b.txt")
	if err != nil {
		t.Fatalf("cat returned error: %v", err)
	}
	if out != "alpha\nbeta\n" {
		t.Errorf("cat output = %q", out)
	}

	if _, err := runIn(t, dir, "cat", "missing.txt"); err == nil {
		t.Error("cat of a missing file should fail")
	} else if !strings.HasPrefix(err.Error(), "cat: ") {
		t.Errorf("error should be prefixed with the command name: %v", err)
	}
}

func TestFileManagement(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	steps := [][]string{
		{"mkdir", "-p", "a/b"},
		{"touch", "a/b/empty"},
		{"cp", "a/b/empty", "copy"},
		{"mv", "copy", "moved"},
		{"chmod", "600", "moved"},
	}
	for _, args := range steps {
		if _, err := runIn(t, dir, args...); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
	}

	for _, p := range []string{"a/b/empty", "moved"} {
		if _, err := os.Stat(filepath.Join(dir, p)); err != nil {
			t.Errorf("%s should exist: %v", p, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "copy")); !os.IsNotExist(err) {
		t.Errorf("copy should have been moved away, stat err = %v", err)
	}
	if info, err := os.Stat(filepath.Join(dir, "moved")); err == nil && info.Mode().Perm() != 0o600 {
		t.Errorf("moved mode = %v, want 0600", info.Mode().Perm())
	}

	if _, err := runIn(t, dir, "rm", "-r", "a"); err != nil {
		t.Fatalf("rm -r: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a")); !os.IsNotExist(err) {
		t.Errorf("a should be removed, stat err = %v", err)
	}
}

func TestFind(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "src", "pkg"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "src", "pkg", "main.go"), "package main\n")
	writeFile(t, filepath.Join(dir, "src", "README"), "")

	out, err := runIn(t, dir, "find", "-name", "*.go", ".")
	if err != nil {
		t.Fatalf("find returned error: %v", err)
	}
	if !strings.Contains(out, "main.go") || strings.Contains(out, "README") {
		t.Errorf("find output = %q", out)
	}
}
