package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pkt.systems/wsmux/schema"
)

func newTerminalCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "terminal",
		Short: "Open a terminal in the focused workspace (bind this to your terminal key)",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := buildService(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			resp, err := svc.SpawnTerminal(cmd.Context(), schema.SpawnTerminalRequest{})
			if err != nil {
				return err
			}
			if resp.Socket != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "terminal %s opened\n", resp.Socket)
			}
			return nil
		},
	}
}
