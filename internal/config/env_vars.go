package config

import (
	"os"
	"strconv"
)

const (
	hostEnvVar      = "SUPERSET_HOST"
	usernameEnvVar  = "SUPERSET_USERNAME"
	passwordEnvVar  = "SUPERSET_PASSWORD"
	providerEnvVar  = "SUPERSET_PROVIDER"
	verifyTLSEnvVar = "SUPERSET_VERIFY_TLS"

	defaultProvider = "db"
)

type EnvVars struct{}

func (EnvVars) GetHost() string {
	return GetEnv(hostEnvVar, "")
}

func (EnvVars) GetUsername() string {
	return GetEnv(usernameEnvVar, "")
}

func (EnvVars) GetPassword() string {
	return GetEnv(passwordEnvVar, "")
}

func (EnvVars) GetProvider() string {
	return GetEnv(providerEnvVar, "")
}

func (e EnvVars) GetVerifyTLS() bool {
	_, v := e.verifyTLS()
	return v
}

// verifyTLS reports whether the variable is set at all alongside its
// value, so a layered config can tell "unset" from "false".
func (EnvVars) verifyTLS() (bool, bool) {
	raw := os.Getenv(verifyTLSEnvVar)
	if raw == "" {
		return false, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, true
	}
	return true, v
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
