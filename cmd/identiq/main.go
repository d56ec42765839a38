// Command identiq runs the user-management dashboard.
package main

import (
	"fmt"
	"os"

	"github.com/identiq/identiq/internal/cli"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := cli.Execute(fmt.Sprintf("%s (%s)", version, commit)); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
