package credentials_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-superset-client/credentials"
)

func TestPasswordIsNeverRenderedInCleartext(t *testing.T) {
	creds := credentials.New("alice", "s3cret!", "db")

	assert.Equal(t, "s3cret!", creds.Password())
	assert.Equal(t, "*******", creds.Redacted())

	assert.NotContains(t, creds.String(), "s3cret!")
	assert.NotContains(t, fmt.Sprintf("%v", creds), "s3cret!")
	assert.NotContains(t, fmt.Sprintf("%#v", creds), "s3cret!")

	raw, err := json.Marshal(creds)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "s3cret!")
	assert.Contains(t, string(raw), `"username":"alice"`)
}

func TestNewDefaultsProvider(t *testing.T) {
	creds := credentials.New("alice", "pw", "")
	assert.Equal(t, credentials.DefaultProvider, creds.Provider)

	ldap := credentials.New("alice", "pw", "ldap")
	assert.Equal(t, "ldap", ldap.Provider)
}

func TestStaticProvider(t *testing.T) {
	creds, err := credentials.Static("alice", "pw", "ldap").Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", creds.Username)
	assert.Equal(t, "pw", creds.Password())
	assert.Equal(t, "ldap", creds.Provider)
}

func TestStaticProviderRequiresUsername(t *testing.T) {
	_, err := credentials.Static("", "pw", "db").Resolve(context.Background())
	require.Error(t, err)
}

func TestPromptUsesSeedWithoutPrompting(t *testing.T) {
	prompt := credentials.NewPrompt(credentials.New("alice", "pw", "db"))

	creds, err := prompt.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", creds.Username)
	assert.Equal(t, "pw", creds.Password())
}

func TestPromptReadsMissingPasswordFromInput(t *testing.T) {
	in, err := os.CreateTemp(t.TempDir(), "stdin")
	require.NoError(t, err)
	_, err = in.WriteString("from-prompt\n")
	require.NoError(t, err)
	_, err = in.Seek(0, 0)
	require.NoError(t, err)

	var out strings.Builder
	prompt := &credentials.Prompt{
		Seed:   credentials.New("alice", "", "db"),
		Input:  in,
		Output: &out,
	}

	creds, err := prompt.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "from-prompt", creds.Password())
	assert.Contains(t, out.String(), "alice")
}

func TestPromptHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := credentials.NewPrompt(credentials.New("alice", "pw", "db")).Resolve(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
