// SPDX-License-Identifier: MPL-2.0

package uroot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/invowk/pansh/pkg/cmdspec"
)

// mockCommand records how it was run.
type mockCommand struct {
	name   string
	args   []cmdspec.ArgSpec
	runFn  func(ctx context.Context, args []string) error
	called bool
	got    []string
}

func (m *mockCommand) Name() string { return m.name }

func (m *mockCommand) Spec() cmdspec.Spec { return cmdspec.Spec{Name: m.name, Args: m.args} }

func (m *mockCommand) SupportedFlags() []FlagInfo { return nil }

func (m *mockCommand) Run(ctx context.Context, args []string) error {
	m.called = true
	m.got = args
	if m.runFn != nil {
		return m.runFn(ctx, args)
	}
	return nil
}

func newMockCommand(name string) *mockCommand {
	return &mockCommand{name: name}
}

func TestRegistry_Register(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	cmd := newMockCommand("test")
	r.Register(cmd)

	found, ok := r.Lookup("test")
	if !ok || found != cmd {
		t.Errorf("Lookup(\"test\") = %v, %v; want registered command", found, ok)
	}
	if _, ok := r.Lookup("nonexistent"); ok {
		t.Error("Lookup should return false for unregistered command")
	}
}

func TestRegistry_Register_Panics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		register func(r *Registry)
	}{
		{"duplicate", func(r *Registry) {
			r.Register(newMockCommand("test"))
			r.Register(newMockCommand("test"))
		}},
		{"duplicate differing in case", func(r *Registry) {
			r.Register(newMockCommand("test"))
			r.RegisterSpec(cmdspec.Spec{Name: "TEST"})
		}},
		{"empty name", func(r *Registry) {
			r.Register(newMockCommand(""))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			tt.register(NewRegistry())
		})
	}
}

func TestRegistry_CaseInsensitive(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register(&mockCommand{name: "cd", args: []cmdspec.ArgSpec{cmdspec.Dir("dir", true)}})

	if _, ok := r.Lookup("CD"); !ok {
		t.Error("Lookup(\"CD\") should find cd")
	}
	spec, ok := r.SpecFor("Cd")
	if !ok || spec.Args[0].Kind != cmdspec.KindDirectoryOnly {
		t.Errorf("SpecFor(\"Cd\") = %+v, %v", spec, ok)
	}
}

func TestRegistry_RegisterSpec(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.RegisterSpec(cmdspec.Spec{Name: "cd", Args: []cmdspec.ArgSpec{cmdspec.Dir("dir", true)}})

	if !r.Exists("cd") {
		t.Error("Exists(\"cd\") = false for a spec-only entry")
	}
	if _, ok := r.Lookup("cd"); ok {
		t.Error("Lookup should not return spec-only entries")
	}
	if err := r.Run(context.Background(), "cd", []string{"cd"}); !errors.Is(err, ErrCommandNotFound) {
		t.Errorf("Run(spec-only) = %v, want ErrCommandNotFound", err)
	}

	var _ cmdspec.Provider = r
}

func TestRegistry_Names(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if names := r.Names(); len(names) != 0 {
		t.Errorf("empty registry Names() = %v", names)
	}

	r.Register(newMockCommand("ls"))
	r.Register(newMockCommand("cat"))
	r.RegisterSpec(cmdspec.Spec{Name: "cp"})

	want := []string{"cat", "cp", "ls"}
	if got := r.Names(); !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	specs := r.Specs()
	if len(specs) != 3 || specs[1].Name != "cp" {
		t.Errorf("Specs() = %+v", specs)
	}
}

func TestRegistry_Merge(t *testing.T) {
	t.Parallel()

	base := NewRegistry()
	base.Register(newMockCommand("ls"))
	base.Register(newMockCommand("cat"))

	r := NewRegistry()
	own := newMockCommand("cat")
	r.Register(own)
	r.Merge(base)

	if got, _ := r.Lookup("cat"); got != own {
		t.Error("Merge replaced an existing command")
	}
	if !r.Exists("ls") {
		t.Error("Merge did not add ls")
	}
}

func TestRegistry_Run(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	cmd := newMockCommand("echo")
	r.Register(cmd)

	if err := r.Run(context.Background(), "echo", []string{"echo", "hello", "world"}); err != nil {
		t.Errorf("Run returned unexpected error: %v", err)
	}
	if !cmd.called || !slices.Equal(cmd.got, []string{"echo", "hello", "world"}) {
		t.Errorf("command received %v", cmd.got)
	}
}

func TestRegistry_Run_NotFound(t *testing.T) {
	t.Parallel()

	err := NewRegistry().Run(context.Background(), "nonexistent", []string{"nonexistent"})
	if !errors.Is(err, ErrCommandNotFound) {
		t.Fatalf("Run() = %v, want ErrCommandNotFound", err)
	}
	if !strings.HasPrefix(err.Error(), "nonexistent: ") {
		t.Errorf("error should name the command: %v", err)
	}
}

func TestRegistry_Run_CommandError(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	expectedErr := errors.New("test: something went wrong")
	r.Register(&mockCommand{
		name:  "test",
		runFn: func(context.Context, []string) error { return expectedErr },
	})

	if err := r.Run(context.Background(), "test", []string{"test"}); !errors.Is(err, expectedErr) {
		t.Errorf("Run should propagate command error, got: %v", err)
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	for i := range 10 {
		r.Register(newMockCommand(fmt.Sprintf("cmd%d", i)))
	}

	done := make(chan bool)
	for range 10 {
		go func() {
			for range 100 {
				r.Lookup("cmd5")
				r.SpecFor("CMD3")
				r.Names()
			}
			done <- true
		}()
	}
	for range 10 {
		<-done
	}
}

func TestDefaultRegistry(t *testing.T) {
	t.Parallel()

	want := []string{"cat", "chmod", "cp", "find", "ls", "mkdir", "mv", "rm", "touch"}
	if got := DefaultRegistry.Names(); !slices.Equal(got, want) {
		t.Errorf("DefaultRegistry.Names() = %v, want %v", got, want)
	}
	for _, name := range want {
		cmd, ok := DefaultRegistry.Lookup(name)
		if !ok {
			t.Fatalf("%s not runnable", name)
		}
		if len(cmd.Spec().Args) == 0 {
			t.Errorf("%s has no argument spec", name)
		}
	}
}

func TestHandlerContext_WithContext(t *testing.T) {
	t.Parallel()

	hc := &HandlerContext{
		Stdin:  strings.NewReader("input"),
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
		Dir:    "/test/dir",
		LookupEnv: func(name string) (string, bool) {
			if name == "HOME" {
				return "/home/test", true
			}
			return "", false
		},
	}

	retrieved := GetHandlerContext(WithHandlerContext(context.Background(), hc))
	if retrieved != hc {
		t.Fatal("GetHandlerContext should return the same HandlerContext")
	}
	if val, ok := retrieved.LookupEnv("HOME"); !ok || val != "/home/test" {
		t.Errorf("LookupEnv(HOME) = (%q, %v)", val, ok)
	}
}

func TestFlagInfo_Usage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		flag FlagInfo
		want string
	}{
		{FlagInfo{Name: "r"}, "-r"},
		{FlagInfo{Name: "m", TakesValue: true}, "-m VALUE"},
		{FlagInfo{Name: "recursive"}, "--recursive"},
	}
	for _, tt := range tests {
		if got := tt.flag.Usage(); got != tt.want {
			t.Errorf("%+v.Usage() = %q, want %q", tt.flag, got, tt.want)
		}
	}
}
