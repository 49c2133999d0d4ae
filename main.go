// gh-codesearch searches GitHub code and downloads every matching file to a
// local scratch directory.
package main

import (
	"fmt"
	"os"

	"github.com/jparise/gh-codesearch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
