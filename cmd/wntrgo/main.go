// Command wntrgo runs an extended-period hydraulic simulation from an
// EPANET2 INP file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "wntrgo",
		Short: "Extended-period hydraulic network solver",
	}
	root.AddCommand(newRunCmd())
	return root
}
