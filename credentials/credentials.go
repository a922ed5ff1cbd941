// Package credentials holds the login identity used to open a Superset
// session and the providers that resolve it. The password is write-only:
// once captured it is never printed, logged, or marshalled in cleartext.
package credentials

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultProvider is Superset's local database auth provider.
const DefaultProvider = "db"

// Credentials identifies a Superset user against an auth provider.
type Credentials struct {
	Username string
	Provider string
	password string
}

// New creates Credentials for the given auth provider. An empty provider
// defaults to the local "db" provider.
func New(username, password, provider string) Credentials {
	if provider == "" {
		provider = DefaultProvider
	}
	return Credentials{
		Username: username,
		Provider: provider,
		password: password,
	}
}

// Password returns the captured password. It exists solely so the login
// request can be built; nothing else should call it.
func (c Credentials) Password() string {
	return c.password
}

// HasPassword reports whether a password has been captured.
func (c Credentials) HasPassword() bool {
	return c.password != ""
}

// Redacted returns the password masked with one '*' per character.
func (c Credentials) Redacted() string {
	return strings.Repeat("*", len(c.password))
}

// String renders the credentials with the password redacted.
func (c Credentials) String() string {
	return fmt.Sprintf("%s@%s:%s", c.Username, c.Provider, c.Redacted())
}

// GoString keeps %#v output free of the cleartext password.
func (c Credentials) GoString() string {
	return fmt.Sprintf("credentials.Credentials{Username: %q, Provider: %q, password: %q}", c.Username, c.Provider, c.Redacted())
}

// MarshalJSON redacts the password. The login payload is built explicitly
// by the client, never by marshalling Credentials.
func (c Credentials) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Username string `json:"username"`
		Provider string `json:"provider"`
		Password string `json:"password"`
	}{
		Username: c.Username,
		Provider: c.Provider,
		Password: c.Redacted(),
	})
}
