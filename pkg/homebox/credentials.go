package homebox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/oangelo/homebox-mcp/pkg/config"
	"github.com/oangelo/homebox-mcp/pkg/errors"
	"github.com/oangelo/homebox-mcp/pkg/logger"
)

// loginTimeout bounds the authentication call so a stale-credential window
// cannot starve session goroutines indefinitely.
const loginTimeout = 15 * time.Second

// Credential is a token usable against the Homebox API.
type Credential struct {
	Token      string
	ObtainedAt time.Time
	Method     string
}

// authAttempt tracks one in-flight authentication so that concurrent callers
// share its outcome instead of issuing duplicate login calls.
type authAttempt struct {
	done chan struct{}
	cred *Credential
	err  error
}

// Credentials owns the Homebox access token and its renewal procedure.
// At most one renewal is in flight at a time process-wide.
type Credentials struct {
	baseURL     string
	method      string
	email       string
	password    string
	staticToken string

	httpClient *http.Client

	mu      sync.Mutex
	current *Credential
	pending *authAttempt
}

// NewCredentials creates a credential manager for the configured auth method.
func NewCredentials(cfg *config.Config) *Credentials {
	return &Credentials{
		baseURL:     cfg.APIBaseURL(),
		method:      cfg.AuthMethod,
		email:       cfg.Email,
		password:    cfg.Password,
		staticToken: cfg.Token,
		httpClient:  &http.Client{Timeout: loginTimeout},
	}
}

// Token returns a token usable right now, authenticating on demand. When a
// renewal is already in flight, the caller waits for its result rather than
// starting another one.
func (c *Credentials) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.current != nil {
		token := c.current.Token
		c.mu.Unlock()
		return token, nil
	}

	if c.pending != nil {
		attempt := c.pending
		c.mu.Unlock()
		select {
		case <-attempt.done:
		case <-ctx.Done():
			return "", ctx.Err()
		}
		if attempt.err != nil {
			return "", attempt.err
		}
		return attempt.cred.Token, nil
	}

	attempt := &authAttempt{done: make(chan struct{})}
	c.pending = attempt
	c.mu.Unlock()

	cred, err := c.authenticate(ctx)

	c.mu.Lock()
	if err == nil {
		c.current = cred
	}
	attempt.cred = cred
	attempt.err = err
	c.pending = nil
	c.mu.Unlock()
	close(attempt.done)

	if err != nil {
		return "", err
	}
	return cred.Token, nil
}

// Invalidate marks the current credential as stale, forcing the next Token
// call to re-authenticate. For the static-token method the token is rebuilt
// verbatim, so the credential is effectively immutable.
func (c *Credentials) Invalidate() {
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()
}

// authenticate obtains a fresh credential using the configured method.
func (c *Credentials) authenticate(ctx context.Context) (*Credential, error) {
	if c.method == config.AuthMethodToken {
		logger.Debug("using configured static token for Homebox authentication")
		return &Credential{
			Token:      c.staticToken,
			ObtainedAt: time.Now(),
			Method:     config.AuthMethodToken,
		}, nil
	}
	return c.login(ctx)
}

// login exchanges email+password for a bearer token.
func (c *Credentials) login(ctx context.Context) (*Credential, error) {
	payload, err := json.Marshal(loginRequest{Username: c.email, Password: c.password})
	if err != nil {
		return nil, errors.NewAuthenticationError(0, "failed to encode login payload", err)
	}

	ctx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/users/login", bytes.NewReader(payload))
	if err != nil {
		return nil, errors.NewAuthenticationError(0, "failed to build login request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewAuthenticationError(0, "login request failed", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewAuthenticationError(resp.StatusCode, strings.TrimSpace(string(body)), nil)
	}

	var login loginResponse
	if err := json.Unmarshal(body, &login); err != nil {
		return nil, errors.NewAuthenticationError(0, "failed to decode login response", err)
	}
	if login.Token == "" {
		return nil, errors.NewAuthenticationError(0, "login response contained no token", nil)
	}

	logger.Info("authenticated with Homebox using credentials")
	return &Credential{
		Token:      strings.TrimPrefix(login.Token, "Bearer "),
		ObtainedAt: time.Now(),
		Method:     config.AuthMethodPassword,
	}, nil
}

// String implements fmt.Stringer without leaking the token.
func (c *Credential) String() string {
	return fmt.Sprintf("credential{method: %s, obtained: %s}", c.Method, c.ObtainedAt.Format(time.RFC3339))
}
