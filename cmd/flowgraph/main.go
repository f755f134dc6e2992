// Command flowgraph inspects type identifiers and manages definition bundles.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
