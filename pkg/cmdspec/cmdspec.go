// SPDX-License-Identifier: MPL-2.0

// Package cmdspec describes the positional arguments a shell command accepts.
//
// The line editor uses these descriptions to decide whether a typed path must
// exist and whether completion should offer directories, files, or both.
package cmdspec

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// KindAny accepts files and directories.
	KindAny OptionKind = "any"
	// KindDirectoryOnly accepts directories only.
	KindDirectoryOnly OptionKind = "directory"
	// KindFileOnly accepts regular files only.
	KindFileOnly OptionKind = "file"
)

// ErrInvalidOptionKind is returned when an OptionKind value is not recognized.
var ErrInvalidOptionKind = errors.New("invalid option kind")

type (
	// OptionKind is the closed set of path kinds a positional argument takes.
	OptionKind string

	// InvalidOptionKindError is returned when an OptionKind value is not recognized.
	// It wraps ErrInvalidOptionKind for errors.Is() compatibility.
	InvalidOptionKindError struct {
		Value OptionKind
	}

	// ArgSpec describes one positional argument.
	ArgSpec struct {
		Name string
		Kind OptionKind
		// MustExist marks arguments that name an existing filesystem entry.
		MustExist   bool
		Description string
	}

	// Spec describes a command. Args lists positional arguments in order;
	// flags are not positional and never consume an Args slot.
	Spec struct {
		Name    string
		Summary string
		Usage   string
		Args    []ArgSpec
	}

	// Provider answers questions about the commands a shell can run.
	Provider interface {
		// Exists reports whether name resolves to a runnable command.
		Exists(name string) bool
		// SpecFor returns the argument description for name.
		SpecFor(name string) (Spec, bool)
	}

	// Static is a fixed Provider keyed by lower-case command name.
	Static map[string]Spec
)

// Error implements the error interface.
func (e *InvalidOptionKindError) Error() string {
	return fmt.Sprintf("invalid option kind %q (valid: any, directory, file)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidOptionKindError) Unwrap() error {
	return ErrInvalidOptionKind
}

// String returns the string representation of the OptionKind.
func (k OptionKind) String() string { return string(k) }

// IsValid returns whether the OptionKind is one of the defined kinds,
// and a list of validation errors if it is not.
func (k OptionKind) IsValid() (bool, []error) {
	switch k {
	case KindAny, KindDirectoryOnly, KindFileOnly:
		return true, nil
	default:
		return false, []error{&InvalidOptionKindError{Value: k}}
	}
}

// AcceptsDirectories reports whether directories are valid for this kind.
func (k OptionKind) AcceptsDirectories() bool {
	return k != KindFileOnly
}

// AcceptsFiles reports whether regular files are valid for this kind.
func (k OptionKind) AcceptsFiles() bool {
	return k != KindDirectoryOnly
}

// Dir returns a directory argument.
func Dir(name string, mustExist bool) ArgSpec {
	return ArgSpec{Name: name, Kind: KindDirectoryOnly, MustExist: mustExist}
}

// File returns a regular file argument.
func File(name string, mustExist bool) ArgSpec {
	return ArgSpec{Name: name, Kind: KindFileOnly, MustExist: mustExist}
}

// Path returns an argument that may be a file or a directory.
func Path(name string, mustExist bool) ArgSpec {
	return ArgSpec{Name: name, Kind: KindAny, MustExist: mustExist}
}

// Positional returns the argument at the 0-based positional index.
func (s Spec) Positional(index int) (ArgSpec, bool) {
	if index < 0 || index >= len(s.Args) {
		return ArgSpec{}, false
	}
	return s.Args[index], true
}

// Exists implements Provider.
func (s Static) Exists(name string) bool {
	_, ok := s[strings.ToLower(name)]
	return ok
}

// SpecFor implements Provider.
func (s Static) SpecFor(name string) (Spec, bool) {
	spec, ok := s[strings.ToLower(name)]
	return spec, ok
}
