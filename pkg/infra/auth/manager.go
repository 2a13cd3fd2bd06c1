package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/ahavic1/houston/pkg/domain/interfaces"
	"github.com/ahavic1/houston/pkg/domain/model"
	"github.com/ahavic1/houston/pkg/domain/types"
)

// assertionTTL bounds the lifetime of the signed app assertion. GitHub
// rejects assertions valid for more than 10 minutes; 60 seconds is plenty for
// a single exchange.
const assertionTTL = 60 * time.Second

// Manager resolves the Authorization header for repository API calls. Static
// credentials pass through untouched; installation mode exchanges a signed
// app assertion for a short lived installation token, memoized in the
// provided cache.
type Manager struct {
	appID      string
	signingKey jwk.Key
	cache      interfaces.TokenCache
	httpClient *http.Client
	apiBase    string
}

// Option customizes a Manager
type Option func(*Manager)

// WithHTTPClient overrides the HTTP client used for the token exchange
func WithHTTPClient(c *http.Client) Option {
	return func(m *Manager) { m.httpClient = c }
}

// WithAPIBase overrides the API endpoint, mainly for tests
func WithAPIBase(base string) Option {
	return func(m *Manager) { m.apiBase = base }
}

// New creates a Manager from the configured GitHub App id and the PEM encoded
// private key registered for that app. The key may be empty when only static
// credentials are used; installation mode then fails at exchange time.
func New(appID string, pemKey []byte, cache interfaces.TokenCache, opts ...Option) (*Manager, error) {
	var key jwk.Key
	if len(pemKey) > 0 {
		var err error
		key, err = jwk.ParseKey(pemKey, jwk.WithPEM(true))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to parse app private key")
		}
	}

	m := &Manager{
		appID:      appID,
		signingKey: key,
		cache:      cache,
		httpClient: http.DefaultClient,
		apiBase:    types.APIBaseURL,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Header returns the Authorization value for API calls against repo.
//
// Two concurrent misses for the same installation id both run the exchange
// and the last write wins; redundant exchanges are harmless and callers
// needing at-most-one should serialize externally.
func (m *Manager) Header(ctx context.Context, repo *model.Repository) (string, error) {
	if !repo.IsInstallation() {
		return "Bearer " + repo.AuthPassword, nil
	}

	installationID := repo.AuthPassword
	if token, ok := m.cache.Get(ctx, installationID); ok {
		return "token " + token, nil
	}

	token, err := m.exchange(ctx, installationID)
	if err != nil {
		return "", err
	}
	m.cache.Set(ctx, installationID, token)

	ctxlog.From(ctx).Debug("Exchanged installation token", "installation_id", installationID)
	return "token " + token, nil
}

// exchange signs a short lived app assertion and trades it for an
// installation scoped access token. Failures are fatal; retry policy belongs
// to the caller.
func (m *Manager) exchange(ctx context.Context, installationID string) (string, error) {
	if m.signingKey == nil {
		return "", goerr.New("GitHub App signing key is not configured")
	}

	now := time.Now()
	assertion, err := jwt.NewBuilder().
		Issuer(m.appID).
		IssuedAt(now).
		Expiration(now.Add(assertionTTL)).
		Build()
	if err != nil {
		return "", goerr.Wrap(err, "failed to build app assertion")
	}

	signed, err := jwt.Sign(assertion, jwt.WithKey(jwa.RS256, m.signingKey))
	if err != nil {
		return "", goerr.Wrap(err, "failed to sign app assertion")
	}

	endpoint := m.apiBase + "/app/installations/" + installationID + "/access_tokens"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create token exchange request")
	}
	req.Header.Set("Authorization", "Bearer "+string(signed))
	req.Header.Set("Accept", types.AcceptMachineManPreview)
	req.Header.Set("User-Agent", types.UserAgent)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", goerr.Wrap(err, "token exchange request failed", goerr.V("installation_id", installationID))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", goerr.New("token exchange returned non-success status",
			goerr.V("status", resp.StatusCode),
			goerr.V("installation_id", installationID),
			goerr.V("body", string(body)))
	}

	var issued struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&issued); err != nil {
		return "", goerr.Wrap(err, "failed to decode token exchange response")
	}
	if issued.Token == "" {
		return "", goerr.New("token exchange response carried no token")
	}

	return issued.Token, nil
}
