package storeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/wb-go/wbf/retry"
)

// refreshThreshold is how close to expiry a token may get before Token
// refreshes it proactively.
const refreshThreshold = 60 * time.Second

// TokenSource supplies the current access token. An empty token with a nil
// error means "no session"; callers must not attempt the request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	ForceRefresh(ctx context.Context) (string, error)
	Invalidate()
}

// Session is the externally issued credential this package consumes. No
// secret material beyond presence and expiry is interpreted here.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// AuthSession is a TokenSource backed by the identity provider's
// refresh-token grant. Instances are safe for concurrent use and are meant
// to be injected, not shared through a package-level singleton, so tests and
// impersonation tooling can run several sessions side by side.
type AuthSession struct {
	authURL  string
	client   *http.Client
	strategy retry.Strategy

	mu      sync.Mutex
	session *Session
}

func NewAuthSession(authURL string, strategy retry.Strategy) *AuthSession {
	return &AuthSession{
		authURL: authURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		strategy: strategy,
	}
}

// SetSession installs the credential obtained from login.
func (a *AuthSession) SetSession(s Session) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session = &s
}

// Token returns the current access token, refreshing first when it is within
// refreshThreshold of expiry. If that refresh fails the soon-to-expire token
// is returned anyway: it may still be briefly valid, and the executor will
// learn the truth from a 401.
func (a *AuthSession) Token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session == nil {
		return "", nil
	}

	if time.Until(a.session.ExpiresAt) < refreshThreshold {
		if err := a.refreshLocked(ctx); err != nil {
			return a.session.AccessToken, nil
		}
	}

	return a.session.AccessToken, nil
}

// ForceRefresh bypasses the near-expiry heuristic; the executor calls it
// after an outright authorization rejection.
func (a *AuthSession) ForceRefresh(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session == nil {
		return "", ErrUnauthenticated
	}
	if err := a.refreshLocked(ctx); err != nil {
		return "", err
	}
	return a.session.AccessToken, nil
}

func (a *AuthSession) Invalidate() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session = nil
}

type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

func (a *AuthSession) refreshLocked(ctx context.Context) error {
	payload, err := json.Marshal(map[string]string{"refresh_token": a.session.RefreshToken})
	if err != nil {
		return err
	}

	var out refreshResponse
	err = retry.Do(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			a.authURL+"/token?grant_type=refresh_token", bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := a.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("refresh rejected: status %d", resp.StatusCode)
		}
		return json.NewDecoder(resp.Body).Decode(&out)
	}, a.strategy)
	if err != nil {
		return err
	}

	a.session = &Session{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(out.ExpiresIn) * time.Second),
	}
	return nil
}
