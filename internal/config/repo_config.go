package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

const (
	configFileName = ".bgit_config"

	// DefaultRemote is the remote used for seeding and pushing
	DefaultRemote = "origin"
	// DefaultPRBase is the base branch for pull requests
	DefaultPRBase = "main"
)

// RepoConfig represents the repository configuration stored in .git/.bgit_config
type RepoConfig struct {
	Remote             *string `json:"remote,omitempty"`
	Push               *bool   `json:"push,omitempty"`
	PRBase             *string `json:"prBase,omitempty"`
	FetchOnTrackRemote *bool   `json:"fetchOnTrackRemote,omitempty"`
}

// RemoteName returns the configured remote or "origin"
func (c *RepoConfig) RemoteName() string {
	if c.Remote != nil && *c.Remote != "" {
		return *c.Remote
	}
	return DefaultRemote
}

// PushByDefault reports whether every commit is pushed without --push
func (c *RepoConfig) PushByDefault() bool {
	return c.Push != nil && *c.Push
}

// PRBaseBranch returns the configured pull request base or "main"
func (c *RepoConfig) PRBaseBranch() string {
	if c.PRBase != nil && *c.PRBase != "" {
		return *c.PRBase
	}
	return DefaultPRBase
}

// FetchBeforeSeeding reports whether --track-remote fetches first (default true)
func (c *RepoConfig) FetchBeforeSeeding() bool {
	return c.FetchOnTrackRemote == nil || *c.FetchOnTrackRemote
}

func configPath(repoRoot string) string {
	return filepath.Join(repoRoot, ".git", configFileName)
}

// GetRepoConfig reads the repository configuration. A missing file yields defaults.
func GetRepoConfig(repoRoot string) (*RepoConfig, error) {
	data, err := os.ReadFile(configPath(repoRoot))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &RepoConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read repo config: %w", err)
	}

	var config RepoConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse repo config: %w", err)
	}
	return &config, nil
}

// SaveRepoConfig writes the repository configuration
func SaveRepoConfig(repoRoot string, config *RepoConfig) error {
	configJSON, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(configPath(repoRoot), configJSON, 0600)
}

// configKey binds a user-facing key to its getter and setter
type configKey struct {
	get func(c *RepoConfig) string
	set func(c *RepoConfig, value string) error
}

var keys = map[string]configKey{
	"remote": {
		get: func(c *RepoConfig) string { return c.RemoteName() },
		set: func(c *RepoConfig, v string) error {
			if v == "" {
				return fmt.Errorf("remote cannot be empty")
			}
			c.Remote = &v
			return nil
		},
	},
	"push": {
		get: func(c *RepoConfig) string { return strconv.FormatBool(c.PushByDefault()) },
		set: func(c *RepoConfig, v string) error {
			b, err := parseBool("push", v)
			if err != nil {
				return err
			}
			c.Push = &b
			return nil
		},
	},
	"pr-base": {
		get: func(c *RepoConfig) string { return c.PRBaseBranch() },
		set: func(c *RepoConfig, v string) error {
			if v == "" {
				return fmt.Errorf("pr-base cannot be empty")
			}
			c.PRBase = &v
			return nil
		},
	},
	"fetch-on-track-remote": {
		get: func(c *RepoConfig) string { return strconv.FormatBool(c.FetchBeforeSeeding()) },
		set: func(c *RepoConfig, v string) error {
			b, err := parseBool("fetch-on-track-remote", v)
			if err != nil {
				return err
			}
			c.FetchOnTrackRemote = &b
			return nil
		},
	},
}

func parseBool(key, value string) (bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid value for %s: %s (must be 'true' or 'false')", key, value)
	}
	return b, nil
}

// Keys lists the supported configuration keys
func Keys() []string {
	names := make([]string, 0, len(keys))
	for name := range keys {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetValue returns the effective value of key
func GetValue(repoRoot, key string) (string, error) {
	k, ok := keys[key]
	if !ok {
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
	config, err := GetRepoConfig(repoRoot)
	if err != nil {
		return "", err
	}
	return k.get(config), nil
}

// SetValue validates and stores value under key
func SetValue(repoRoot, key, value string) error {
	k, ok := keys[key]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	config, err := GetRepoConfig(repoRoot)
	if err != nil {
		return err
	}
	if err := k.set(config, value); err != nil {
		return err
	}
	return SaveRepoConfig(repoRoot, config)
}
