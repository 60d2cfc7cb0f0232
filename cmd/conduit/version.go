package main

import (
	"github.com/spf13/cobra"

	cliinternal "github.com/netauto-ai/conduit/cmd/conduit/internal"
	"github.com/netauto-ai/conduit/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cliinternal.NewFormatter(cmd.OutOrStdout(), jsonOutput)
		info := version.Get()
		if out.JSON() {
			return out.PrintJSON(info)
		}
		out.PrintLine("%s", info)
		return nil
	},
}
