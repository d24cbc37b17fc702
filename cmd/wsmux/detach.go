package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pkt.systems/wsmux/schema"
)

func newDetachCmd(cfgPath *string) *cobra.Command {
	var sessionName string
	cmd := &cobra.Command{
		Use:   "detach",
		Short: "Save the focused workspace as a session and close its windows",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := parseSessionFlag(sessionName)
			if err != nil {
				return err
			}
			svc, err := buildService(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			resp, err := svc.Detach(cmd.Context(), schema.DetachRequest{Session: name})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "session %q saved to %s (%d terminals)\n", resp.Session, resp.Host, resp.Terminals)
			fmt.Fprintf(out, "workspace %s detached\n", resp.Workspace)
			return nil
		},
	}
	cmd.Flags().StringVarP(&sessionName, "session", "s", "", "session name to save as")
	return cmd
}
