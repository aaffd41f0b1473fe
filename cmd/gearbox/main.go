// Command gearbox simulates grids of meshing gears.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/gearbox/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
