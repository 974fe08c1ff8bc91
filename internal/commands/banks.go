package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/banksync-dev/banksync/internal/site"
)

func newBanksCommand(reg *site.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "banks",
		Short: "List supported banks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range reg.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
