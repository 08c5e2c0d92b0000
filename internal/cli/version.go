package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the provider release.
const Version = "0.1.0"

const modulePath = "github.com/mesh-intelligence/provider"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the provider version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "provider v%s\nmodule: %s\n", Version, modulePath)
			return nil
		},
	}
}
