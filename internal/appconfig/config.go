package appconfig

import (
	"os"
	"path/filepath"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int    `mapstructure:"config_version" yaml:"config_version"`
	BaseDir       string `mapstructure:"base_dir" yaml:"base_dir"`
	// RemoteBaseDir roots session files on remote hosts. A relative
	// path is resolved against the remote user's home directory.
	RemoteBaseDir string         `mapstructure:"remote_base_dir" yaml:"remote_base_dir"`
	StateDir      string         `mapstructure:"state_dir" yaml:"state_dir"`
	Terminal      TerminalConfig `mapstructure:"terminal" yaml:"terminal"`
	SSH           SSHConfig      `mapstructure:"ssh" yaml:"ssh"`
	Lock          LockConfig     `mapstructure:"lock" yaml:"lock"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// TerminalConfig controls terminal spawning and window detection.
type TerminalConfig struct {
	// Command overrides the terminal emulator; empty means $TERMINAL,
	// falling back to i3-sensible-terminal.
	Command string `mapstructure:"command" yaml:"command"`
	// WaitAttempts bounds how many times a spawned window is polled
	// for before giving up.
	WaitAttempts int `mapstructure:"wait_attempts" yaml:"wait_attempts"`
	// WaitIntervalMS spaces the polls, in milliseconds.
	WaitIntervalMS int `mapstructure:"wait_interval_ms" yaml:"wait_interval_ms"`
}

// SSHConfig configures the OpenSSH client invocations.
type SSHConfig struct {
	ControlPath           string `mapstructure:"control_path" yaml:"control_path"`
	ControlPersist        string `mapstructure:"control_persist" yaml:"control_persist"`
	ConnectTimeoutSeconds int    `mapstructure:"connect_timeout_seconds" yaml:"connect_timeout_seconds"`
}

// LockConfig controls session lock acquisition.
type LockConfig struct {
	// AcquireWaitMS is how long remote acquisition waits before reading
	// the holder pid back.
	AcquireWaitMS int `mapstructure:"acquire_wait_ms" yaml:"acquire_wait_ms"`
	// HeartbeatIntervalSeconds spaces the remote holder's heartbeat
	// writes.
	HeartbeatIntervalSeconds int `mapstructure:"heartbeat_interval_seconds" yaml:"heartbeat_interval_seconds"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	return Config{
		ConfigVersion: CurrentConfigVersion,
		BaseDir:       filepath.Join(home, ".wsmux"),
		RemoteBaseDir: ".wsmux",
		StateDir:      filepath.Join(home, ".wsmux", "state"),
		Terminal: TerminalConfig{
			Command:        "",
			WaitAttempts:   50,
			WaitIntervalMS: 100,
		},
		SSH: SSHConfig{
			ControlPath:           filepath.Join(home, ".wsmux", "control", "%r@%h:%p"),
			ControlPersist:        "10m",
			ConnectTimeoutSeconds: 10,
		},
		Lock: LockConfig{
			AcquireWaitMS:            500,
			HeartbeatIntervalSeconds: 30,
		},
	}, nil
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".wsmux", "config.yaml"), nil
}
