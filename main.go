// SPDX-License-Identifier: MPL-2.0

// ayb audits mod definition files for overwritten base game templates.
package main

import cmd "github.com/allyourbase/allyourbase/cmd/ayb"

func main() {
	cmd.Execute()
}
