// Package branding provides compile-time identity values for the CLI.
//
// branding.yaml is embedded into the binary; rebuilding with an edited copy
// changes the command name, home directory, env prefix and default catalog.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName     string `yaml:"cli_name"`
	DisplayName string `yaml:"display_name"`
	Description string `yaml:"description"`
	HomeDir     string `yaml:"home_dir"`
	EnvPrefix   string `yaml:"env_prefix"`
	GoModule    string `yaml:"go_module"`
	IndexURL    string `yaml:"index_url"`
}

func load() {
	once.Do(func() {
		// Set hard defaults in case the embedded file is missing/empty.
		defaults = brand{
			CLIName:     "mip",
			DisplayName: "mip",
			Description: "Package manager for MATLAB packages",
			HomeDir:     ".mip",
			EnvPrefix:   "MIP",
			GoModule:    "github.com/mip-org/mip-package-manager",
			IndexURL:    "https://mip-org.github.io/mip-core/index.json",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "mip").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".mip").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "MIP").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GoModule returns the Go module path. Not consumed at runtime.
func GoModule() string { load(); return defaults.GoModule }

// IndexURL returns the default package index location.
func IndexURL() string { load(); return defaults.IndexURL }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("ROOT") → "MIP_ROOT".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
