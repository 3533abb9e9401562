// Command pandafill fills panda output events from reconstruction records.
package main

import (
	"os"

	"github.com/roach88/pandafill/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
