// SPDX-License-Identifier: MPL-2.0

//go:build windows

package terminal

import (
	"os"

	"golang.org/x/term"
)

func size(tty *os.File) (width, height int, err error) {
	return term.GetSize(int(tty.Fd()))
}
