// Package config loads portsight target definitions — which host to reach
// over SSH and where the Compose project lives on it.
//
// Two file dialects are supported, mirroring the formats operators already
// keep next to their deployments:
//   - YAML (.yml/.yaml), parsed with gopkg.in/yaml.v3
//   - JSON with comments (.json/.jsonc), stripped with github.com/tidwall/jsonc
//     and parsed with the standard encoding/json
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// DefaultFileNames lists the file names Locate probes, in priority order.
var DefaultFileNames = []string{
	"portsight.yml",
	"portsight.yaml",
	"portsight.json",
	"portsight.jsonc",
}

// Default values applied by ApplyDefaults for fields left unset.
const (
	defaultSSHPort        = 22
	defaultTimeoutSeconds = 10
)

// Target describes one remote deployment to inspect.
type Target struct {
	// Host is the hostname or IP address of the deployment host. It is
	// used both for the SSH connection and as the host portion of every
	// discovered URL.
	Host string `yaml:"host" json:"host"`

	// SSHPort is the SSH port on the host. Defaults to 22.
	SSHPort int `yaml:"sshPort" json:"sshPort"`

	// User is the SSH login user.
	User string `yaml:"user" json:"user"`

	// Password enables password authentication. Optional when KeyFile
	// is set.
	Password string `yaml:"password,omitempty" json:"password,omitempty"`

	// KeyFile is the path to a private key for public-key authentication.
	KeyFile string `yaml:"keyFile,omitempty" json:"keyFile,omitempty"`

	// ProjectDir is the remote directory holding the Compose project.
	// Every discovery command executes from this directory. Empty means
	// the login shell's working directory.
	ProjectDir string `yaml:"projectDir,omitempty" json:"projectDir,omitempty"`

	// ConnectTimeoutSeconds bounds the SSH dial and handshake.
	// Defaults to 10.
	ConnectTimeoutSeconds int `yaml:"connectTimeoutSeconds,omitempty" json:"connectTimeoutSeconds,omitempty"`
}

// Load reads and parses the target definition at path, dispatching on the
// file extension. The result has defaults applied but is NOT validated —
// callers typically overlay CLI flags first and then call Validate.
func Load(path string) (*Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	target, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return target, nil
}

// Parse decodes raw target-definition bytes using the dialect implied by
// the file extension (".yml", ".yaml", ".json", or ".jsonc").
func Parse(data []byte, ext string) (*Target, error) {
	var target Target

	switch strings.ToLower(ext) {
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(data, &target); err != nil {
			return nil, err
		}
	case ".json", ".jsonc":
		// jsonc.ToJSON strips comments and trailing commas, after which
		// the standard library decoder applies.
		if err := json.Unmarshal(jsonc.ToJSON(data), &target); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config extension %q (expected .yml, .yaml, .json, or .jsonc)", ext)
	}

	target.ApplyDefaults()
	return &target, nil
}

// Locate searches dir for a target definition file, trying each of
// DefaultFileNames in order. Returns the first path that exists, or an
// error naming the candidates when none do.
func Locate(dir string) (string, error) {
	for _, name := range DefaultFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no target definition found in %s (looked for %s)",
		dir, strings.Join(DefaultFileNames, ", "))
}

// ApplyDefaults fills unset fields with their defaults.
func (t *Target) ApplyDefaults() {
	if t.SSHPort == 0 {
		t.SSHPort = defaultSSHPort
	}
	if t.ConnectTimeoutSeconds == 0 {
		t.ConnectTimeoutSeconds = defaultTimeoutSeconds
	}
}

// Validate checks that the target carries everything needed to connect.
func (t *Target) Validate() error {
	if t.Host == "" {
		return fmt.Errorf("target host must not be empty")
	}
	if t.User == "" {
		return fmt.Errorf("target user must not be empty")
	}
	if t.Password == "" && t.KeyFile == "" {
		return fmt.Errorf("target needs a password or a key file for SSH authentication")
	}
	if t.SSHPort < 1 || t.SSHPort > 65535 {
		return fmt.Errorf("ssh port %d out of range (1-65535)", t.SSHPort)
	}
	return nil
}

// ConnectTimeout returns the configured timeout as a duration.
func (t *Target) ConnectTimeout() time.Duration {
	return time.Duration(t.ConnectTimeoutSeconds) * time.Second
}
