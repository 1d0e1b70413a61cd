// Command carscan inspects and maintains the on-device scan store.
package main

import (
	"fmt"
	"os"
)

func main() {
	rootCmd, c := newRootCommand()
	err := rootCmd.Execute()
	if cerr := c.close(); cerr != nil {
		fmt.Fprintf(os.Stderr, "failed to close local database: %v\n", cerr)
		if err == nil {
			err = cerr
		}
	}
	if err != nil {
		os.Exit(1)
	}
}
