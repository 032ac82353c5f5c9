// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package terminal

import (
	"testing"

	"github.com/creack/pty"
)

func TestOpen_PseudoTerminal(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("no pseudo-terminal available: %v", err)
	}
	t.Cleanup(func() {
		_ = ptmx.Close()
		_ = tty.Close()
	})

	if err := pty.Setsize(ptmx, &pty.Winsize{Rows: 30, Cols: 100}); err != nil {
		t.Fatalf("Setsize() error = %v", err)
	}

	term, err := Open(tty, tty)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer term.Close()

	if !term.IsTerminal() {
		t.Fatal("IsTerminal() = false for a pty")
	}
	w, h, err := term.Size()
	if err != nil || w != 100 || h != 30 {
		t.Errorf("Size() = %d, %d, %v; want 100, 30, nil", w, h, err)
	}

	// Raw mode delivers keys without waiting for a newline.
	if _, err := ptmx.Write([]byte("q")); err != nil {
		t.Fatal(err)
	}
	if b, ok := term.NextByte(); !ok || b != 'q' {
		t.Errorf("NextByte() = %q, %v; want 'q', true", b, ok)
	}

	if err := term.Suspend(); err != nil {
		t.Fatalf("Suspend() error = %v", err)
	}
	if err := term.Resume(); err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if _, err := ptmx.Write([]byte("z")); err != nil {
		t.Fatal(err)
	}
	if b, ok := term.NextByte(); !ok || b != 'z' {
		t.Errorf("NextByte() after Resume = %q, %v; want 'z', true", b, ok)
	}
}
