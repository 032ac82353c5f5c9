// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package terminal

import (
	"os"

	"github.com/creack/pty"
)

func size(tty *os.File) (width, height int, err error) {
	rows, cols, err := pty.Getsize(tty)
	if err != nil {
		return 0, 0, err
	}
	return cols, rows, nil
}
