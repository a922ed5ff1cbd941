package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const fileEnvVar = "SUPERSET_CONFIG_FILE"

// FileVars holds settings read from a YAML config file. All fields are
// optional; environment variables take precedence over every one of them.
type FileVars struct {
	Host      string `yaml:"host"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	Provider  string `yaml:"provider"`
	VerifyTLS *bool  `yaml:"verify_tls"`
}

// loadFile reads the config file named by SUPERSET_CONFIG_FILE, falling
// back to ~/.superset/client.yaml. A missing or unreadable file yields
// an empty FileVars rather than an error.
func loadFile() FileVars {
	path := os.Getenv(fileEnvVar)
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return FileVars{}
		}
		path = filepath.Join(home, ".superset", "client.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return FileVars{}
	}

	var fv FileVars
	if err := yaml.Unmarshal(data, &fv); err != nil {
		return FileVars{}
	}
	return fv
}
