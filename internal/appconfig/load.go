package appconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load reads configuration from the provided path. If path is empty, uses DefaultConfigPath.
func Load(path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("config_version", cfg.ConfigVersion)
	v.SetDefault("base_dir", cfg.BaseDir)
	v.SetDefault("remote_base_dir", cfg.RemoteBaseDir)
	v.SetDefault("state_dir", cfg.StateDir)
	v.SetDefault("terminal.command", cfg.Terminal.Command)
	v.SetDefault("terminal.wait_attempts", cfg.Terminal.WaitAttempts)
	v.SetDefault("terminal.wait_interval_ms", cfg.Terminal.WaitIntervalMS)
	v.SetDefault("ssh.control_path", cfg.SSH.ControlPath)
	v.SetDefault("ssh.control_persist", cfg.SSH.ControlPersist)
	v.SetDefault("ssh.connect_timeout_seconds", cfg.SSH.ConnectTimeoutSeconds)
	v.SetDefault("lock.acquire_wait_ms", cfg.Lock.AcquireWaitMS)
	v.SetDefault("lock.heartbeat_interval_seconds", cfg.Lock.HeartbeatIntervalSeconds)

	// A missing file means defaults. With an explicit config file viper
	// reports a plain path error rather than ConfigFileNotFoundError.
	configLoaded := false
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return Config{}, err
		}
	} else {
		configLoaded = true
	}

	if configLoaded {
		if !v.IsSet("config_version") {
			return Config{}, fmt.Errorf("config_version is required; expected %d", CurrentConfigVersion)
		}
		if v.GetInt("config_version") != CurrentConfigVersion {
			return Config{}, fmt.Errorf("unsupported config_version %d; expected %d", v.GetInt("config_version"), CurrentConfigVersion)
		}
		if v.GetInt("terminal.wait_attempts") <= 0 {
			return Config{}, fmt.Errorf("terminal.wait_attempts must be positive")
		}
		if v.GetInt("terminal.wait_interval_ms") <= 0 {
			return Config{}, fmt.Errorf("terminal.wait_interval_ms must be positive")
		}
		if v.GetInt("lock.heartbeat_interval_seconds") <= 0 {
			return Config{}, fmt.Errorf("lock.heartbeat_interval_seconds must be positive")
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	expandConfigEnv(&cfg)
	return cfg, nil
}

func expandConfigEnv(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.BaseDir = expandEnv(cfg.BaseDir)
	cfg.StateDir = expandEnv(cfg.StateDir)
	cfg.Terminal.Command = expandEnv(cfg.Terminal.Command)
	cfg.SSH.ControlPath = expandEnv(cfg.SSH.ControlPath)
}

func expandEnv(value string) string {
	if value == "" {
		return value
	}
	return os.Expand(value, func(key string) string {
		if key == "" {
			return ""
		}
		if val, ok := lookupEnv(key); ok {
			return val
		}
		return "$" + key
	})
}

func lookupEnv(key string) (string, bool) {
	if val, ok := os.LookupEnv(key); ok {
		return val, true
	}
	switch key {
	case "UID":
		return fmt.Sprintf("%d", os.Getuid()), true
	case "GID":
		return fmt.Sprintf("%d", os.Getgid()), true
	}
	return "", false
}

// WriteDefault writes the default config to the target path.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
