// SPDX-License-Identifier: MPL-2.0

package highlight

import (
	"errors"
	"fmt"
	"strings"
)

const (
	KindDefault         TokenKind = "Default"
	KindCommand         TokenKind = "Command"
	KindValidCommand    TokenKind = "ValidCommand"
	KindInvalidCommand  TokenKind = "InvalidCommand"
	KindArgument        TokenKind = "Argument"
	KindFlag            TokenKind = "Flag"
	KindString          TokenKind = "String"
	KindPath            TokenKind = "Path"
	KindInvalidPath     TokenKind = "InvalidPath"
	KindNumber          TokenKind = "Number"
	KindPipe            TokenKind = "Pipe"
	KindRedirect        TokenKind = "Redirect"
	KindVariable        TokenKind = "Variable"
	KindComment         TokenKind = "Comment"
	KindError           TokenKind = "Error"
	KindWarning         TokenKind = "Warning"
	KindSuccess         TokenKind = "Success"
	KindPromptUser      TokenKind = "PromptUser"
	KindPromptHost      TokenKind = "PromptHost"
	KindPromptSeparator TokenKind = "PromptSeparator"
	KindPromptPath      TokenKind = "PromptPath"
	KindPromptSymbol    TokenKind = "PromptSymbol"
)

// ErrInvalidTokenKind is returned when a TokenKind value is not recognized.
var ErrInvalidTokenKind = errors.New("invalid token kind")

var allKinds = []TokenKind{
	KindDefault, KindCommand, KindValidCommand, KindInvalidCommand,
	KindArgument, KindFlag, KindString, KindPath, KindInvalidPath,
	KindNumber, KindPipe, KindRedirect, KindVariable, KindComment,
	KindError, KindWarning, KindSuccess,
	KindPromptUser, KindPromptHost, KindPromptSeparator, KindPromptPath, KindPromptSymbol,
}

type (
	// TokenKind names a syntactic class. The names double as palette file keys.
	TokenKind string

	// InvalidTokenKindError is returned when a TokenKind value is not recognized.
	// It wraps ErrInvalidTokenKind for errors.Is() compatibility.
	InvalidTokenKindError struct {
		Value TokenKind
	}
)

// Kinds returns every TokenKind in declaration order.
func Kinds() []TokenKind {
	return append([]TokenKind(nil), allKinds...)
}

// ParseTokenKind matches s against the kind names, ignoring case.
func ParseTokenKind(s string) (TokenKind, error) {
	for _, k := range allKinds {
		if strings.EqualFold(string(k), s) {
			return k, nil
		}
	}
	return "", &InvalidTokenKindError{Value: TokenKind(s)}
}

// Error implements the error interface.
func (e *InvalidTokenKindError) Error() string {
	return fmt.Sprintf("invalid token kind %q", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidTokenKindError) Unwrap() error {
	return ErrInvalidTokenKind
}

// String returns the string representation of the TokenKind.
func (k TokenKind) String() string { return string(k) }

// IsValid returns whether the TokenKind is one of the defined kinds,
// and a list of validation errors if it is not.
func (k TokenKind) IsValid() (bool, []error) {
	for _, known := range allKinds {
		if k == known {
			return true, nil
		}
	}
	return false, []error{&InvalidTokenKindError{Value: k}}
}
