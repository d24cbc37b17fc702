package core

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"pkt.systems/pslog"

	"pkt.systems/wsmux/schema"
	"pkt.systems/wsmux/transport"
)

// attachCommand builds the shell command a spawned terminal runs: an
// abduco attach-or-create against the socket, tunneled through ssh for
// remote hosts. abduco keeps the shell alive on the session host, which
// is what makes detach survivable.
func (s *service) attachCommand(host schema.HostRef, socket string) string {
	abduco := fmt.Sprintf("abduco -A /tmp/%s bash", socket)
	if host.IsLocal() {
		return "exec " + abduco
	}
	argv := append([]string{"ssh", "-t"}, transport.Argv(s.cfg.SSH, string(host), transport.Quote(abduco))...)
	return "TERM=xterm-256color exec " + strings.Join(argv, " ")
}

// NewSpawner returns the exec-backed terminal spawner. An empty command
// falls back to $TERMINAL, then i3-sensible-terminal.
func NewSpawner(command string, logger pslog.Logger) TerminalSpawner {
	return &execSpawner{command: command, log: logger}
}

type execSpawner struct {
	command string
	log     pslog.Logger
}

func (s *execSpawner) terminal() string {
	if s.command != "" {
		return s.command
	}
	if term := os.Getenv("TERMINAL"); term != "" {
		return term
	}
	return "i3-sensible-terminal"
}

func (s *execSpawner) Spawn(ctx context.Context, instance, command string) error {
	term := s.terminal()
	cmd := exec.Command(term, "-name", instance, "-e", "bash", "-c", command)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch terminal %s: %w", term, err)
	}
	if s.log != nil {
		s.log.Debug("terminal launched", "terminal", term, "instance", instance, "pid", cmd.Process.Pid)
	}
	// The terminal outlives this process.
	return cmd.Process.Release()
}

func (s *execSpawner) SpawnPlain(ctx context.Context) error {
	term := s.terminal()
	cmd := exec.Command(term)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch terminal %s: %w", term, err)
	}
	return cmd.Process.Release()
}
