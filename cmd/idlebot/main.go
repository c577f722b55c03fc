// Command idlebot runs the vitality and patrol loops without the desktop
// panel, and inspects saved captures.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
