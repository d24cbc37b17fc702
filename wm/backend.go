package wm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"pkt.systems/pslog"
)

// Runner executes an external command and returns its stdout.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Backend talks to a running i3 or Sway instance through its msg
// client.
type Backend struct {
	msgCmd     string
	socketPath string
	runner     Runner
	log        pslog.Logger
}

// Connect detects the running window manager: SWAYSOCK first, then
// I3SOCK, then each WM's --get-socketpath as a fallback.
func Connect(logger pslog.Logger) (*Backend, error) {
	return connectWithRunner(logger, execRunner{})
}

func connectWithRunner(logger pslog.Logger, runner Runner) (*Backend, error) {
	if socket := os.Getenv("SWAYSOCK"); socket != "" {
		return newBackend("swaymsg", socket, runner, logger), nil
	}
	if socket := os.Getenv("I3SOCK"); socket != "" {
		return newBackend("i3-msg", socket, runner, logger), nil
	}
	if out, err := runner.Run(context.Background(), "sway", "--get-socketpath"); err == nil {
		if socket := strings.TrimSpace(string(out)); socket != "" {
			return newBackend("swaymsg", socket, runner, logger), nil
		}
	}
	if out, err := runner.Run(context.Background(), "i3", "--get-socketpath"); err == nil {
		if socket := strings.TrimSpace(string(out)); socket != "" {
			return newBackend("i3-msg", socket, runner, logger), nil
		}
	}
	return nil, fmt.Errorf("no running window manager detected: neither SWAYSOCK nor I3SOCK is set and no socket path could be queried")
}

func newBackend(msgCmd, socketPath string, runner Runner, logger pslog.Logger) *Backend {
	if logger != nil {
		logger = logger.With("wm", msgCmd)
	}
	return &Backend{msgCmd: msgCmd, socketPath: socketPath, runner: runner, log: logger}
}

type commandOutcome struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// RunCommand issues a window-manager command ("split h", "[id=...]
// mark --add ...", ...) and fails if no outcome succeeded.
func (b *Backend) RunCommand(ctx context.Context, command string) error {
	out, err := b.runner.Run(ctx, b.msgCmd, "-s", b.socketPath, command)
	if err != nil {
		return fmt.Errorf("%s %q: %w", b.msgCmd, command, err)
	}
	var outcomes []commandOutcome
	if err := json.Unmarshal(out, &outcomes); err != nil {
		return fmt.Errorf("%s %q: parse outcomes: %w", b.msgCmd, command, err)
	}
	for _, o := range outcomes {
		if o.Success {
			if b.log != nil {
				b.log.Trace("wm command ok", "command", command)
			}
			return nil
		}
	}
	reason := "no matching outcome"
	if len(outcomes) > 0 && outcomes[0].Error != "" {
		reason = outcomes[0].Error
	}
	return fmt.Errorf("%s %q failed: %s", b.msgCmd, command, reason)
}

// Tree fetches the full container tree.
func (b *Backend) Tree(ctx context.Context) (*TreeNode, error) {
	out, err := b.runner.Run(ctx, b.msgCmd, "-s", b.socketPath, "-t", "get_tree")
	if err != nil {
		return nil, fmt.Errorf("%s get_tree: %w", b.msgCmd, err)
	}
	var root TreeNode
	if err := json.Unmarshal(out, &root); err != nil {
		return nil, fmt.Errorf("%s get_tree: parse tree: %w", b.msgCmd, err)
	}
	return &root, nil
}

// Workspaces fetches the workspace list.
func (b *Backend) Workspaces(ctx context.Context) ([]Workspace, error) {
	out, err := b.runner.Run(ctx, b.msgCmd, "-s", b.socketPath, "-t", "get_workspaces")
	if err != nil {
		return nil, fmt.Errorf("%s get_workspaces: %w", b.msgCmd, err)
	}
	var workspaces []Workspace
	if err := json.Unmarshal(out, &workspaces); err != nil {
		return nil, fmt.Errorf("%s get_workspaces: parse workspaces: %w", b.msgCmd, err)
	}
	return workspaces, nil
}

// FocusedWorkspace returns the workspace that currently has focus.
func (b *Backend) FocusedWorkspace(ctx context.Context) (Workspace, error) {
	workspaces, err := b.Workspaces(ctx)
	if err != nil {
		return Workspace{}, err
	}
	for _, ws := range workspaces {
		if ws.Focused {
			return ws, nil
		}
	}
	return Workspace{}, fmt.Errorf("no focused workspace found")
}
