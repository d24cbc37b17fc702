package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pkt.systems/wsmux/schema"
)

func newKillCmd(cfgPath *string) *cobra.Command {
	var remote string
	var sessionName string
	cmd := &cobra.Command{
		Use:   "kill",
		Short: "Delete a saved session record",
		RunE: func(cmd *cobra.Command, args []string) error {
			host, err := parseHostFlag(remote)
			if err != nil {
				return err
			}
			name, err := schema.ParseSessionName(sessionName)
			if err != nil {
				return err
			}
			svc, err := buildService(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			resp, err := svc.Kill(cmd.Context(), schema.KillRequest{Host: host, Session: name})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "session %q deleted\n", resp.Session)
			return nil
		},
	}
	cmd.Flags().StringVarP(&remote, "remote", "r", "", "remote host (host or user@host)")
	cmd.Flags().StringVarP(&sessionName, "session", "s", "", "session name")
	_ = cmd.MarkFlagRequired("session")
	return cmd
}
