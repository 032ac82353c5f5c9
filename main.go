// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/invowk/pansh/cmd/pansh"

func main() {
	cmd.Execute()
}
