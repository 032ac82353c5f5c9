// SPDX-License-Identifier: MPL-2.0

// Package issue carries user-facing errors for pansh.
//
// ActionableError records what failed, on which resource, and what the user
// can do about it. Issue pages are longer Markdown explanations rendered
// with glamour for failures that need more than a one-line hint.
package issue
