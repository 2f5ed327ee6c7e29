package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// BaseDir returns ~/.telesync.
func BaseDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".telesync")
}

// Dir returns the profile-specific directory.
func Dir(name string) string {
	return filepath.Join(BaseDir(), "profiles", name)
}

// DBPath returns the account/options database path for a profile.
func DBPath(name string) string {
	return filepath.Join(Dir(name), "telesync.db")
}

// SessionDir returns the directory holding MTProto session files.
func SessionDir(name string) string {
	return filepath.Join(Dir(name), "sessions")
}

// SessionPath returns the MTProto session file for one linked account.
func SessionPath(name, accountRef string) string {
	return filepath.Join(SessionDir(name), accountRef+".session.json")
}

// LogDir returns the log directory for a profile.
func LogDir(name string) string {
	return filepath.Join(Dir(name), "logs")
}

// LogPath returns the daemon log file path.
func LogPath(name string) string {
	return filepath.Join(LogDir(name), "telesyncd.log")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// Resolve picks the profile name: explicit flag wins, then the config
// default, then "default".
func Resolve(flagValue, configDefault string) string {
	if flagValue != "" {
		return flagValue
	}
	if configDefault != "" {
		return configDefault
	}
	return "default"
}

// ValidateName rejects names that would escape the profiles directory.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("profile name is empty")
	}
	if strings.ContainsAny(name, "/\\") || name == "." || name == ".." {
		return fmt.Errorf("invalid profile name %q", name)
	}
	return nil
}

// EnsureDir creates the profile directory tree with proper permissions.
func EnsureDir(name string) error {
	dirs := []string{
		Dir(name),
		SessionDir(name),
		LogDir(name),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
