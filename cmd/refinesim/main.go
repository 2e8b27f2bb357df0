// refinesim runs refine simulations from the command line.
//
// Usage:
//
//	refinesim simulate --initial 8 --target 10 --equipment armor [--runs 1000] [--workers 4]
//	refinesim once --initial 5 --target 9 --equipment weapon --protect 5=false,6=false
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
