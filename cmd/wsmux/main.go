package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/spf13/cobra"

	"pkt.systems/psi"
	"pkt.systems/pslog"
)

// errAmbiguousSession maps to exit code 2 so workspace pickers (rofi,
// dmenu wrappers) can distinguish "pick one" from a real failure.
var errAmbiguousSession = errors.New("multiple sessions available")

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
	ctx = pslog.ContextWithLogger(ctx, logger)
	log.SetOutput(pslog.LogLogger(logger).Writer())
	log.SetFlags(0)

	root := newRootCmd()
	root.SetArgs(os.Args[1:])

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, errAmbiguousSession) {
			return 2
		}
		pslog.Ctx(ctx).With("err", err).Error("wsmux command failed")
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var cfgPath string
	var remote string
	var sessionName string
	root := &cobra.Command{
		Use:           "wsmux",
		Short:         "Detachable workspace sessions for i3 and Sway",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Bare invocation activates the focused workspace, which is
			// what an i3 keybind wants.
			return runActivate(cmd, cfgPath, remote, sessionName)
		},
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	root.Flags().StringVarP(&remote, "remote", "r", "", "remote host (host or user@host)")
	root.Flags().StringVarP(&sessionName, "session", "s", "", "session name")

	root.AddCommand(newActivateCmd(&cfgPath))
	root.AddCommand(newDetachCmd(&cfgPath))
	root.AddCommand(newAttachCmd(&cfgPath))
	root.AddCommand(newSessionsCmd(&cfgPath))
	root.AddCommand(newKillCmd(&cfgPath))
	root.AddCommand(newTerminalCmd(&cfgPath))
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())

	return root
}
