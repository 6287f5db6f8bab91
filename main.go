// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/zensh/zensh/cmd/zensh"

func main() {
	cmd.Execute()
}
