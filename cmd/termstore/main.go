// Command termstore queries and edits an embedded term store from the
// command line.
package main

import (
	"os"

	"github.com/roach88/termstore/internal/cli"
)

func main() {
	os.Exit(cli.Execute(cli.NewRootCommand(), os.Args[1:]))
}
