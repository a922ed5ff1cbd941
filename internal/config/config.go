package config

// Config provides the connection settings for a Superset client.
// Values are resolved from environment variables first, then from an
// optional YAML config file.
type Config interface {
	ClientConfig
}

// ClientConfig describes where and how to reach a Superset instance.
type ClientConfig interface {
	GetHost() string
	GetUsername() string
	GetPassword() string
	GetProvider() string
	GetVerifyTLS() bool
}

type mainConfig struct {
	layered
}

// New builds a Config backed by environment variables with an optional
// YAML file underneath them.
func New() Config {
	return mainConfig{layered{env: EnvVars{}, file: loadFile()}}
}

// layered resolves each setting from the environment first and falls
// back to the config file value.
type layered struct {
	env  EnvVars
	file FileVars
}

func (l layered) GetHost() string {
	if v := l.env.GetHost(); v != "" {
		return v
	}
	return l.file.Host
}

func (l layered) GetUsername() string {
	if v := l.env.GetUsername(); v != "" {
		return v
	}
	return l.file.Username
}

func (l layered) GetPassword() string {
	if v := l.env.GetPassword(); v != "" {
		return v
	}
	return l.file.Password
}

func (l layered) GetProvider() string {
	if v := l.env.GetProvider(); v != "" {
		return v
	}
	if l.file.Provider != "" {
		return l.file.Provider
	}
	return defaultProvider
}

func (l layered) GetVerifyTLS() bool {
	if set, v := l.env.verifyTLS(); set {
		return v
	}
	if l.file.VerifyTLS != nil {
		return *l.file.VerifyTLS
	}
	return true
}
