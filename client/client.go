// Package client implements an authenticated session against the Superset
// REST API. It performs the initial password login, fetches the CSRF token,
// injects auth headers on every request, and transparently refreshes the
// access token when the server reports it expired.
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-superset-client/credentials"
	"github.com/jrsteele09/go-superset-client/internal/config"
	"github.com/jrsteele09/go-superset-client/internal/utils"
	"github.com/jrsteele09/go-superset-client/token"
)

const defaultTimeout = 30 * time.Second

// State is the session lifecycle phase. Login and refresh failures are
// terminal: a Failed client must be discarded and rebuilt.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateAuthenticated
	StateRefreshing
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateRefreshing:
		return "refreshing"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Client is an authenticated HTTP session bound to one Superset instance.
// It owns exactly one live token pair; refresh replaces the pair wholesale.
// All methods are safe for concurrent use.
type Client struct {
	host    string
	baseURL string
	httpc   *http.Client
	policy  RefreshPolicy
	log     zerolog.Logger

	interceptors []ResponseInterceptor

	mu        sync.Mutex
	creds     credentials.Credentials
	pair      token.Pair
	csrfToken string
	state     State
}

// Option configures a Client before it authenticates.
type Option func(*options)

type options struct {
	httpClient         *http.Client
	provider           credentials.Provider
	policy             RefreshPolicy
	log                *zerolog.Logger
	timeout            time.Duration
	insecureSkipVerify bool
	interceptors       []ResponseInterceptor
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithCredentialProvider sets the provider that resolves login credentials.
// The default reads SUPERSET_USERNAME / SUPERSET_PASSWORD (or the config
// file) and prompts the terminal for whatever is missing.
func WithCredentialProvider(p credentials.Provider) Option {
	return func(o *options) { o.provider = p }
}

// WithRefreshPolicy overrides how 401 responses are classified.
func WithRefreshPolicy(p RefreshPolicy) Option {
	return func(o *options) { o.policy = p }
}

// WithLogger attaches a zerolog logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = &log }
}

// WithTimeout sets the per-request timeout on the default HTTP client.
// Ignored when WithHTTPClient is also given.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithInsecureSkipVerify disables TLS certificate verification. Ignored
// when WithHTTPClient is also given.
func WithInsecureSkipVerify() Option {
	return func(o *options) { o.insecureSkipVerify = true }
}

// WithResponseInterceptor appends an interceptor to run after the built-in
// refresh interceptor on every response.
func WithResponseInterceptor(ic ResponseInterceptor) Option {
	return func(o *options) { o.interceptors = append(o.interceptors, ic) }
}

// New builds a Client for host, resolves credentials, logs in, and fetches
// the CSRF token. An empty host falls back to SUPERSET_HOST. Login or CSRF
// failures return an *AuthenticationError.
func New(ctx context.Context, host string, opts ...Option) (*Client, error) {
	cfg := config.New()

	o := &options{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(o)
	}

	if host == "" {
		host = cfg.GetHost()
	}
	if host == "" {
		return nil, errors.New("[client.New] host is required")
	}

	if o.provider == nil {
		o.provider = credentials.NewPrompt(credentials.New(cfg.GetUsername(), cfg.GetPassword(), cfg.GetProvider()))
	}
	if o.policy == nil {
		o.policy = ExpiredTokenPolicy{}
	}
	if o.httpClient == nil {
		transport := http.DefaultTransport
		if o.insecureSkipVerify || !cfg.GetVerifyTLS() {
			transport = &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			}
		}
		o.httpClient = &http.Client{
			Timeout:   o.timeout,
			Transport: transport,
		}
	}

	log := zerolog.Nop()
	if o.log != nil {
		log = *o.log
	}

	c := &Client{
		host:    host,
		baseURL: JoinURLs(host, apiPath),
		httpc:   o.httpClient,
		policy:  o.policy,
		log:     log,
		state:   StateUnauthenticated,
	}
	c.interceptors = append([]ResponseInterceptor{&refreshInterceptor{client: c}}, o.interceptors...)

	creds, err := o.provider.Resolve(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "[client.New] resolving credentials")
	}
	c.creds = creds

	if err := c.authenticate(ctx); err != nil {
		return nil, err
	}
	if err := c.fetchCSRFToken(ctx); err != nil {
		return nil, err
	}

	return c, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Provider string `json:"provider"`
	Refresh  bool   `json:"refresh"`
}

type tokenResponse struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken *string `json:"refresh_token,omitempty"`
}

// authenticate submits credentials to the login endpoint and installs the
// initial token pair.
func (c *Client) authenticate(ctx context.Context) error {
	c.setState(StateAuthenticating)

	body, err := json.Marshal(loginRequest{
		Username: c.creds.Username,
		Password: c.creds.Password(),
		Provider: c.creds.Provider,
		Refresh:  true,
	})
	if err != nil {
		return c.failAuth("login", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.loginEndpoint(), bytes.NewReader(body))
	if err != nil {
		return c.failAuth("login", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// Pre-authentication call: no session headers, no interceptors.
	resp, err := c.httpc.Do(req)
	if err != nil {
		return c.failAuth("login", err)
	}
	defer resp.Body.Close()

	if err := CheckResponse(resp); err != nil {
		return c.failAuth("login", err)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return c.failAuth("login", err)
	}
	if tr.AccessToken == "" {
		return c.failAuth("login", errors.New("response missing access_token"))
	}

	c.setToken(token.Pair{Access: tr.AccessToken, Refresh: utils.Value(tr.RefreshToken)})
	c.setState(StateAuthenticated)

	c.log.Debug().Str("username", c.creds.Username).Str("provider", c.creds.Provider).Msg("authenticated")
	return nil
}

type csrfResponse struct {
	Result string `json:"result"`
}

// fetchCSRFToken performs the one-time CSRF token fetch that follows login.
// The token is never renewed for the lifetime of the session.
func (c *Client) fetchCSRFToken(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.csrfEndpoint(), nil)
	if err != nil {
		return c.failAuth("csrf", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token().Access)
	req.Header.Set("Referer", c.baseURL)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return c.failAuth("csrf", err)
	}
	defer resp.Body.Close()

	if err := CheckResponse(resp); err != nil {
		return c.failAuth("csrf", err)
	}

	var cr csrfResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return c.failAuth("csrf", err)
	}
	if cr.Result == "" {
		return c.failAuth("csrf", errors.New("response missing result field"))
	}

	c.mu.Lock()
	c.csrfToken = cr.Result
	c.mu.Unlock()

	c.log.Debug().Msg("csrf token acquired")
	return nil
}

// refreshToken trades the current refresh token for a new pair. The call
// runs on an isolated HTTP client so in-flight requests on the primary
// session are never disturbed. A refresh response without a refresh token
// keeps the old one.
func (c *Client) refreshToken(ctx context.Context) error {
	old := c.Token()
	if old.Refresh == "" {
		return c.failAuth("refresh", errors.New("no refresh token held"))
	}

	c.setState(StateRefreshing)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.refreshEndpoint(), nil)
	if err != nil {
		return c.failAuth("refresh", err)
	}
	req.Header.Set("Authorization", "Bearer "+old.Refresh)

	refreshClient := &http.Client{
		Transport: c.httpc.Transport,
		Timeout:   c.httpc.Timeout,
	}
	resp, err := refreshClient.Do(req)
	if err != nil {
		return c.failAuth("refresh", err)
	}
	defer resp.Body.Close()

	if err := CheckResponse(resp); err != nil {
		return c.failAuth("refresh", err)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return c.failAuth("refresh", err)
	}
	if tr.AccessToken == "" {
		return c.failAuth("refresh", errors.New("response missing access_token"))
	}

	next := old.Merged(token.Pair{Access: tr.AccessToken, Refresh: utils.Value(tr.RefreshToken)})
	c.setToken(next)
	c.setState(StateAuthenticated)

	c.log.Debug().Msg("access token refreshed")
	return nil
}

func (c *Client) failAuth(op string, err error) error {
	c.setState(StateFailed)
	return &AuthenticationError{Op: op, Err: err}
}

// Token returns a copy of the live token pair.
func (c *Client) Token() token.Pair {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pair
}

func (c *Client) setToken(pair token.Pair) {
	c.mu.Lock()
	c.pair = pair
	c.mu.Unlock()
}

// CSRFToken returns the session's CSRF token.
func (c *Client) CSRFToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.csrfToken
}

// State returns the session lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// TokenSource exposes the session's live pair as an oauth2.TokenSource so
// it can be plugged into oauth2-aware code. The source reflects whatever
// pair is live at call time; it never triggers a refresh itself.
func (c *Client) TokenSource() oauth2.TokenSource {
	return tokenSource{client: c}
}

type tokenSource struct {
	client *Client
}

func (ts tokenSource) Token() (*oauth2.Token, error) {
	pair := ts.client.Token()
	if pair.IsZero() {
		return nil, errors.New("[TokenSource] session holds no token")
	}
	return pair.OAuth2Token(), nil
}
