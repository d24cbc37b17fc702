// Package transport executes commands on remote hosts through the
// OpenSSH client. Connection sharing via ControlMaster keeps repeated
// calls cheap, and a detached long-running invocation doubles as the
// session lock holder: the remote process lives exactly as long as its
// local ssh process does.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"pkt.systems/pslog"
)

// ErrTransport indicates the ssh channel itself failed, as opposed to
// the remote command returning a logical failure.
var ErrTransport = errors.New("ssh transport failure")

// sshConnectionFailure is the exit status OpenSSH reserves for its own
// errors.
const sshConnectionFailure = 255

// ExitError reports a remote command that ran and exited nonzero.
type ExitError struct {
	Command string
	Code    int
	Stderr  string
}

func (e *ExitError) Error() string {
	stderr := strings.TrimSpace(e.Stderr)
	if stderr == "" {
		return fmt.Sprintf("remote command exited %d: %s", e.Code, e.Command)
	}
	return fmt.Sprintf("remote command exited %d: %s: %s", e.Code, e.Command, stderr)
}

// Options configures the OpenSSH invocation.
type Options struct {
	ControlPath    string
	ControlPersist string
	ConnectTimeout time.Duration
}

// Client runs commands on one remote host.
type Client struct {
	host string
	opts Options
	log  pslog.Logger
}

// NewClient builds a client for a host (host or user@host, validated
// upstream). The ControlPath directory is created eagerly so the first
// connection can establish a master.
func NewClient(host string, opts Options, logger pslog.Logger) (*Client, error) {
	if opts.ControlPath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.ControlPath), 0o700); err != nil {
			return nil, fmt.Errorf("create control socket dir: %w", err)
		}
	}
	if logger != nil {
		logger = logger.With("host", host)
	}
	return &Client{host: host, opts: opts, log: logger}, nil
}

// Host returns the remote host this client addresses.
func (c *Client) Host() string { return c.host }

func sshArgs(opts Options, host string, remote ...string) []string {
	args := []string{"-o", "BatchMode=yes"}
	if opts.ConnectTimeout > 0 {
		args = append(args, "-o", fmt.Sprintf("ConnectTimeout=%d", int(opts.ConnectTimeout.Seconds())))
	}
	if opts.ControlPath != "" {
		persist := opts.ControlPersist
		if persist == "" {
			persist = "10m"
		}
		args = append(args,
			"-o", "ControlPath="+opts.ControlPath,
			"-o", "ControlMaster=auto",
			"-o", "ControlPersist="+persist,
		)
	}
	args = append(args, host)
	return append(args, remote...)
}

// Run executes a command remotely and returns its stdout. Nonzero
// remote exits surface as *ExitError; exit 255 is reported as a
// transport failure since OpenSSH uses it for its own errors.
func (c *Client) Run(ctx context.Context, command string) (string, error) {
	cmd := exec.CommandContext(ctx, "ssh", sshArgs(c.opts, c.host, command)...)
	out, err := cmd.Output()
	if err != nil {
		return "", c.wrapRunError(command, err)
	}
	return string(out), nil
}

// Check executes a command remotely and reports whether it exited
// zero. Only channel failures are errors; a nonzero remote exit is the
// answer "false" (e.g. kill -0 against a dead pid).
func (c *Client) Check(ctx context.Context, command string) (bool, error) {
	cmd := exec.CommandContext(ctx, "ssh", sshArgs(c.opts, c.host, command)...)
	err := cmd.Run()
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.ExitCode() == sshConnectionFailure {
			return false, fmt.Errorf("%w: %s: %s", ErrTransport, c.host, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return false, nil
	}
	return false, fmt.Errorf("%w: %s: %v", ErrTransport, c.host, err)
}

// RunStdin executes a command remotely with the given stdin, typically
// `cat > file` to write a remote file without quoting its content.
func (c *Client) RunStdin(ctx context.Context, command string, stdin io.Reader) error {
	cmd := exec.CommandContext(ctx, "ssh", sshArgs(c.opts, c.host, command)...)
	cmd.Stdin = stdin
	if _, err := cmd.Output(); err != nil {
		return c.wrapRunError(command, err)
	}
	return nil
}

func (c *Client) wrapRunError(command string, err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.ExitCode() == sshConnectionFailure {
			return fmt.Errorf("%w: %s: %s", ErrTransport, c.host, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return &ExitError{Command: command, Code: exitErr.ExitCode(), Stderr: string(exitErr.Stderr)}
	}
	return fmt.Errorf("%w: %s: %v", ErrTransport, c.host, err)
}

// Handle is the local grip on a detached remote invocation. The remote
// process lives as long as the local ssh process; terminating the
// handle propagates to the remote side, where an EXIT trap cleans up.
type Handle struct {
	cmd *exec.Cmd
}

// Start launches a detached, long-running remote command and returns
// its handle. The process survives the calling process's exit unless
// terminated explicitly.
func (c *Client) Start(command string) (*Handle, error) {
	cmd := exec.Command("ssh", sshArgs(c.opts, c.host, "bash", "-c", Quote(command))...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start %s: %v", ErrTransport, c.host, err)
	}
	if c.log != nil {
		c.log.Debug("detached transport session started", "pid", cmd.Process.Pid)
	}
	return &Handle{cmd: cmd}, nil
}

// PID returns the local process id of the detached ssh process. It is
// what workspace bookkeeping records, since later CLI invocations are
// separate processes and cannot hold this handle.
func (h *Handle) PID() int {
	return h.cmd.Process.Pid
}

// Terminate stops the detached process and reaps it.
func (h *Handle) Terminate() error {
	if err := h.cmd.Process.Signal(syscall.SIGTERM); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	_ = h.cmd.Wait()
	return nil
}

// TerminatePID stops a detached process recorded by an earlier
// invocation. A pid that is already gone is not an error.
func TerminatePID(pid int) error {
	if pid <= 0 {
		return nil
	}
	err := syscall.Kill(pid, syscall.SIGTERM)
	if err == nil || errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return err
}

// Argv builds the full ssh argument vector for a host and remote
// command, using the same connection-sharing options the client itself
// uses. Callers that need an interactive channel prepend "-t".
func Argv(opts Options, host string, remote ...string) []string {
	return sshArgs(opts, host, remote...)
}

// Quote wraps a string in single quotes for safe embedding in a shell
// command line.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
