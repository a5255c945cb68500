// Command flagprune removes stale feature flags from a source tree.
package main

import "github.com/flagprune/flagprune/cmd/flagprune/commands"

func main() {
	commands.Execute()
}
