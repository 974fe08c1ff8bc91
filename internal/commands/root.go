package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/banksync-dev/banksync/internal/buildinfo"
	"github.com/banksync-dev/banksync/internal/site"
	"github.com/banksync-dev/banksync/internal/site/boa"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "banksync",
		Short:   "Sync bank transactions into your budget",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	reg := defaultRegistry()
	rootCmd.AddCommand(newSyncCommand(reg))
	rootCmd.AddCommand(newBanksCommand(reg))

	return rootCmd
}

// defaultRegistry wires every supported bank.
func defaultRegistry() *site.Registry {
	r := site.NewRegistry()
	r.Register(boa.Name, boa.New)
	return r
}
