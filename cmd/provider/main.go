// Command provider is the command-line front end of the locator-routed
// CRUD provider.
package main

import "github.com/mesh-intelligence/provider/internal/cli"

func main() {
	cli.Execute()
}
