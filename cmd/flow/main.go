// Command flow runs, inspects, and introspects workflow documents, grounded
// on original_source/worker/crates/cli/src/cli.rs's four subcommands and
// built with github.com/spf13/cobra (the pack's one CLI skeleton, carried
// from alexisbeaulieu97-Streamy's cmd/streamy).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flow",
		Short: "Run and inspect Re:Earth Flow workflow documents",
	}
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newDotCmd())
	cmd.AddCommand(newSchemaActionCmd())
	cmd.AddCommand(newSchemaWorkflowCmd())
	return cmd
}
