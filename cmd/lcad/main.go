// lcad is the command line entry point to the parameter synchronization
// engine: inspect parameters, drive recalculation passes, reset engine state,
// and run the built-in demo study.
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
