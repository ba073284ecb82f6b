// SPDX-License-Identifier: MPL-2.0

// Command authprov provisions container images for the spotizerr-auth
// credential tool and hands control to the tool inside them.
package main

import cmd "authprov/cmd/authprov"

func main() {
	cmd.Execute()
}
