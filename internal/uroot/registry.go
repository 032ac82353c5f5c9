// SPDX-License-Identifier: MPL-2.0

package uroot

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/invowk/pansh/pkg/cmdspec"
)

// DefaultRegistry holds the file utilities registered at init time.
var DefaultRegistry = NewRegistry()

// ErrCommandNotFound is returned by Run for unknown names.
var ErrCommandNotFound = errors.New("command not found")

type (
	// Registry maps command names to implementations. Names match
	// case-insensitively. A Registry is safe for concurrent use and
	// satisfies cmdspec.Provider.
	Registry struct {
		mu      sync.RWMutex
		entries map[string]entry
	}

	// entry is either a runnable command or a bare spec for a command the
	// interpreter implements itself.
	entry struct {
		cmd  Command
		spec cmdspec.Spec
	}
)

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds a command. Panics on an empty or duplicate name.
func (r *Registry) Register(cmd Command) {
	spec := cmd.Spec()
	spec.Name = cmd.Name()
	r.add(entry{cmd: cmd, spec: spec})
}

// RegisterSpec records a command that runs elsewhere, so that it is still
// highlighted and completed. Panics on an empty or duplicate name.
func (r *Registry) RegisterSpec(spec cmdspec.Spec) {
	r.add(entry{spec: spec})
}

func (r *Registry) add(e entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(e.spec.Name)
	if key == "" {
		panic("uroot: cannot register command with empty name")
	}
	if _, exists := r.entries[key]; exists {
		panic(fmt.Sprintf("uroot: command %q already registered", e.spec.Name))
	}
	r.entries[key] = e
}

// Lookup returns the runnable command for name. Spec-only entries are not
// returned.
func (r *Registry) Lookup(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[strings.ToLower(name)]
	if !ok || e.cmd == nil {
		return nil, false
	}
	return e.cmd, true
}

// Exists reports whether name is registered in either form.
func (r *Registry) Exists(name string) bool {
	_, ok := r.SpecFor(name)
	return ok
}

// SpecFor returns the argument description for name.
func (r *Registry) SpecFor(name string) (cmdspec.Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[strings.ToLower(name)]
	return e.spec, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		names = append(names, e.spec.Name)
	}
	slices.Sort(names)
	return names
}

// Specs returns every registered spec ordered by name.
func (r *Registry) Specs() []cmdspec.Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specs := make([]cmdspec.Spec, 0, len(r.entries))
	for _, e := range r.entries {
		specs = append(specs, e.spec)
	}
	slices.SortFunc(specs, func(a, b cmdspec.Spec) int { return strings.Compare(a.Name, b.Name) })
	return specs
}

// Merge registers every command of other that r does not already have.
func (r *Registry) Merge(other *Registry) {
	other.mu.RLock()
	entries := make([]entry, 0, len(other.entries))
	for _, e := range other.entries {
		entries = append(entries, e)
	}
	other.mu.RUnlock()

	for _, e := range entries {
		if !r.Exists(e.spec.Name) {
			r.add(e)
		}
	}
}

// Run executes a command by name. args[0] is the command name.
func (r *Registry) Run(ctx context.Context, name string, args []string) error {
	cmd, ok := r.Lookup(name)
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrCommandNotFound)
	}
	return cmd.Run(ctx, args)
}

// RegisterDefault registers a command in the DefaultRegistry.
func RegisterDefault(cmd Command) {
	DefaultRegistry.Register(cmd)
}
