package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pkt.systems/wsmux/schema"
)

func newSessionsCmd(cfgPath *string) *cobra.Command {
	var remote string
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List saved sessions on a host",
		RunE: func(cmd *cobra.Command, args []string) error {
			host, err := parseHostFlag(remote)
			if err != nil {
				return err
			}
			svc, err := buildService(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			resp, err := svc.Sessions(cmd.Context(), schema.SessionsRequest{Host: host})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(resp.Sessions) == 0 {
				fmt.Fprintf(out, "no sessions on %s\n", resp.Host)
				return nil
			}
			fmt.Fprintf(out, "sessions on %s:\n", resp.Host)
			for _, info := range resp.Sessions {
				status := ""
				switch {
				case info.Locked:
					status = fmt.Sprintf(" [locked by %s]", info.LockedBy)
				case info.Stale:
					status = " [stale lock]"
				}
				fmt.Fprintf(out, "  %s - %d terminals%s\n", info.Name, info.Terminals, status)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&remote, "remote", "r", "", "remote host (host or user@host)")
	return cmd
}
