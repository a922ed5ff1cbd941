package credentials

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/user"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/term"
)

// Provider resolves the credentials used to open a session. Implementations
// may read configuration, prompt a terminal, or call out to a secret store.
type Provider interface {
	Resolve(ctx context.Context) (Credentials, error)
}

// Static returns a Provider that always yields the given credentials.
func Static(username, password, provider string) Provider {
	return staticProvider{creds: New(username, password, provider)}
}

type staticProvider struct {
	creds Credentials
}

func (s staticProvider) Resolve(context.Context) (Credentials, error) {
	if s.creds.Username == "" {
		return Credentials{}, errors.New("[Static.Resolve] username is required")
	}
	return s.creds, nil
}

// Prompt resolves credentials interactively. Seed values that are already
// known are used as-is; a missing username falls back to the OS user and a
// missing password is read from the terminal without echo.
type Prompt struct {
	Seed   Credentials
	Input  *os.File  // defaults to os.Stdin
	Output io.Writer // defaults to os.Stderr
}

// NewPrompt creates a Prompt seeded with whatever is already known.
func NewPrompt(seed Credentials) *Prompt {
	return &Prompt{Seed: seed}
}

func (p *Prompt) Resolve(ctx context.Context) (Credentials, error) {
	if err := ctx.Err(); err != nil {
		return Credentials{}, err
	}

	creds := p.Seed
	if creds.Provider == "" {
		creds.Provider = DefaultProvider
	}

	if creds.Username == "" {
		osUser, err := user.Current()
		if err != nil {
			return Credentials{}, errors.Wrap(err, "[Prompt.Resolve] no username and no OS user")
		}
		creds.Username = osUser.Username
	}

	if creds.password == "" {
		password, err := p.readPassword(creds.Username)
		if err != nil {
			return Credentials{}, errors.Wrap(err, "[Prompt.Resolve] password prompt")
		}
		creds.password = password
	}

	return creds, nil
}

func (p *Prompt) readPassword(username string) (string, error) {
	in := p.Input
	if in == nil {
		in = os.Stdin
	}
	out := p.Output
	if out == nil {
		out = os.Stderr
	}

	fmt.Fprintf(out, "Password for %s: ", username)

	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}

	// Non-terminal input (pipes, tests): read a single line.
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
