package homebox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oangelo/homebox-mcp/pkg/config"
	gwerrors "github.com/oangelo/homebox-mcp/pkg/errors"
)

func passwordConfig(url string) *config.Config {
	return &config.Config{
		HomeboxURL: url,
		AuthMethod: config.AuthMethodPassword,
		Email:      "user@example.com",
		Password:   "hunter2",
		Host:       "127.0.0.1",
		Port:       8099,
	}
}

func tokenConfig(url string) *config.Config {
	return &config.Config{
		HomeboxURL: url,
		AuthMethod: config.AuthMethodToken,
		Token:      "static-token",
		Host:       "127.0.0.1",
		Port:       8099,
	}
}

// loginServer counts login calls and hands out sequentially numbered tokens.
func loginServer(t *testing.T, logins *atomic.Int64) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/users/login", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "user@example.com", req["username"])
		require.Equal(t, "hunter2", req["password"])

		n := logins.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"token":"tok-%d"}`, n)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestCredentials_PasswordLogin(t *testing.T) {
	t.Parallel()

	var logins atomic.Int64
	ts := loginServer(t, &logins)

	creds := NewCredentials(passwordConfig(ts.URL))

	token, err := creds.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	// Second call reuses the cached credential.
	token, err = creds.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, int64(1), logins.Load())
}

func TestCredentials_InvalidateForcesRenewal(t *testing.T) {
	t.Parallel()

	var logins atomic.Int64
	ts := loginServer(t, &logins)

	creds := NewCredentials(passwordConfig(ts.URL))

	token, err := creds.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	creds.Invalidate()

	token, err = creds.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-2", token)
	assert.Equal(t, int64(2), logins.Load())
}

func TestCredentials_StaticToken(t *testing.T) {
	t.Parallel()

	// No server: the static method must never issue an HTTP call.
	creds := NewCredentials(tokenConfig("http://homebox.invalid"))

	token, err := creds.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "static-token", token)

	// Invalidation leaves the static token unchanged.
	creds.Invalidate()
	token, err = creds.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "static-token", token)
}

func TestCredentials_LoginFailure(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
	}))
	t.Cleanup(ts.Close)

	creds := NewCredentials(passwordConfig(ts.URL))

	_, err := creds.Token(context.Background())
	require.Error(t, err)
	assert.True(t, gwerrors.IsAuthentication(err))

	var authErr *gwerrors.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusUnauthorized, authErr.Status)
}

func TestCredentials_RenewalCoalescing(t *testing.T) {
	t.Parallel()

	var logins atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		logins.Add(1)
		// Hold the login open long enough for all waiters to pile up.
		time.Sleep(100 * time.Millisecond)
		fmt.Fprint(w, `{"token":"tok-shared"}`)
	}))
	t.Cleanup(ts.Close)

	creds := NewCredentials(passwordConfig(ts.URL))

	const callers = 20
	var wg sync.WaitGroup
	tokens := make([]string, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], errs[i] = creds.Token(context.Background())
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "tok-shared", tokens[i])
	}
	assert.Equal(t, int64(1), logins.Load(), "concurrent callers must share one login")
}

func TestCredentials_WaitersShareRenewalFailure(t *testing.T) {
	t.Parallel()

	var logins atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		logins.Add(1)
		time.Sleep(50 * time.Millisecond)
		http.Error(w, "nope", http.StatusForbidden)
	}))
	t.Cleanup(ts.Close)

	creds := NewCredentials(passwordConfig(ts.URL))

	const callers = 5
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = creds.Token(context.Background())
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		assert.True(t, gwerrors.IsAuthentication(errs[i]))
	}
	assert.Equal(t, int64(1), logins.Load())
}
