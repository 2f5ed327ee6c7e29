package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Defaults for request pacing. The platform throttles channel joins much
// harder than ordinary requests, hence the separate interval classes.
const (
	DefaultGenericInterval  = 3 * time.Second
	DefaultJoinInterval     = 12 * time.Second
	DefaultMutationInterval = 2500 * time.Millisecond
)

// Config represents the global ~/.telesync/config.toml.
type Config struct {
	APIID          int    `toml:"api_id"`
	APIHash        string `toml:"api_hash"`
	DefaultProfile string `toml:"default_profile"`
	Pacing         Pacing `toml:"pacing"`
}

// Pacing holds optional overrides for the fixed request delays, in seconds.
// Zero means "use the default"; sub-second values are allowed (e.g. 2.5).
type Pacing struct {
	GenericSeconds  float64 `toml:"generic_seconds"`
	JoinSeconds     float64 `toml:"join_seconds"`
	MutationSeconds float64 `toml:"mutation_seconds"`
}

// Generic returns the delay between dependent message requests.
func (p Pacing) Generic() time.Duration {
	return orDefault(p.GenericSeconds, DefaultGenericInterval)
}

// Join returns the delay before each channel join.
func (p Pacing) Join() time.Duration {
	return orDefault(p.JoinSeconds, DefaultJoinInterval)
}

// Mutation returns the delay before folder/pin/privacy mutations.
func (p Pacing) Mutation() time.Duration {
	return orDefault(p.MutationSeconds, DefaultMutationInterval)
}

func orDefault(seconds float64, def time.Duration) time.Duration {
	if seconds <= 0 {
		return def
	}
	return time.Duration(seconds * float64(time.Second))
}

// Load reads config from the given path. Returns zero config and error if
// file missing.
func Load(path string) (*Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault reads config from path, falling back to a zero config when
// the file does not exist yet.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	return cfg, err
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
