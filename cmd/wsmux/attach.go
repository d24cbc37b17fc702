package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pkt.systems/wsmux/schema"
)

func newAttachCmd(cfgPath *string) *cobra.Command {
	var remote string
	var sessionName string
	var force bool
	cmd := &cobra.Command{
		Use:   "attach",
		Short: "Restore a saved session into the focused workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			host, err := parseHostFlag(remote)
			if err != nil {
				return err
			}
			name, err := parseSessionFlag(sessionName)
			if err != nil {
				return err
			}
			svc, err := buildService(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			resp, err := svc.Attach(cmd.Context(), schema.AttachRequest{Host: host, Session: name, Force: force})
			if err != nil {
				return err
			}
			if len(resp.Candidates) > 0 {
				errOut := cmd.ErrOrStderr()
				fmt.Fprintln(errOut, "multiple sessions available:")
				for _, candidate := range resp.Candidates {
					fmt.Fprintf(errOut, "  - %s\n", candidate)
				}
				fmt.Fprintln(errOut, "\nspecify one with -s/--session")
				return errAmbiguousSession
			}
			fmt.Fprintf(cmd.OutOrStdout(), "attached to session %q in workspace %s (%d terminals)\n",
				resp.Session, resp.Workspace, resp.Terminals)
			return nil
		},
	}
	cmd.Flags().StringVarP(&remote, "remote", "r", "", "remote host (host or user@host)")
	cmd.Flags().StringVarP(&sessionName, "session", "s", "", "session name")
	cmd.Flags().BoolVar(&force, "force", false, "break an existing lock")
	return cmd
}
