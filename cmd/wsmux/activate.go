package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pkt.systems/wsmux/schema"
)

func newActivateCmd(cfgPath *string) *cobra.Command {
	var remote string
	var sessionName string
	cmd := &cobra.Command{
		Use:   "activate",
		Short: "Bind the focused workspace to a session and open its first terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runActivate(cmd, *cfgPath, remote, sessionName)
		},
	}
	cmd.Flags().StringVarP(&remote, "remote", "r", "", "remote host (host or user@host)")
	cmd.Flags().StringVarP(&sessionName, "session", "s", "", "session name")
	return cmd
}

func runActivate(cmd *cobra.Command, cfgPath, remote, sessionName string) error {
	host, err := parseHostFlag(remote)
	if err != nil {
		return err
	}
	name, err := parseSessionFlag(sessionName)
	if err != nil {
		return err
	}
	svc, err := buildService(cmd.Context(), cfgPath)
	if err != nil {
		return err
	}
	resp, err := svc.Activate(cmd.Context(), schema.ActivateRequest{Host: host, Session: name})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "workspace %s activated\n", resp.Workspace)
	if !resp.Host.IsLocal() {
		fmt.Fprintf(out, "  remote: %s\n", resp.Host)
	}
	return nil
}
