package github

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"

	"github.com/ahavic1/houston/pkg/domain/interfaces"
	"github.com/ahavic1/houston/pkg/domain/model"
	"github.com/ahavic1/houston/pkg/domain/types"
)

// Client publishes release assets and failure issues against GitHub. It
// satisfies interfaces.PackagePublisher and interfaces.LogPublisher; other
// hosting providers implement those interfaces independently.
type Client struct {
	authz      interfaces.Authorizer
	httpClient *http.Client
	apiBase    *url.URL
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for asset uploads
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithAPIBase points the REST client at an alternate endpoint, mainly for
// tests. The base must be parseable; a trailing slash is appended when
// missing.
func WithAPIBase(base string) Option {
	return func(cl *Client) {
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		if u, err := url.Parse(base); err == nil {
			cl.apiBase = u
		}
	}
}

// NewClient creates a Client resolving per-repository credentials through
// authz.
func NewClient(authz interfaces.Authorizer, opts ...Option) *Client {
	c := &Client{
		authz:      authz,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// api builds a REST client whose transport injects the Authorization header
// for repo on every call.
func (c *Client) api(repo *model.Repository) *github.Client {
	gh := github.NewClient(&http.Client{Transport: &authTransport{
		base:  http.DefaultTransport,
		authz: c.authz,
		repo:  repo,
	}})
	gh.UserAgent = types.UserAgent
	if c.apiBase != nil {
		gh.BaseURL = c.apiBase
	}
	return gh
}

// authTransport decorates every request with the computed Authorization
// header and the fixed user agent.
type authTransport struct {
	base  http.RoundTripper
	authz interfaces.Authorizer
	repo  *model.Repository
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	header, err := t.authz.Header(req.Context(), t.repo)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve authorization header")
	}

	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", header)
	clone.Header.Set("User-Agent", types.UserAgent)
	return t.base.RoundTrip(clone)
}

// tagName strips the refs/tags/ prefix so a fully qualified reference can be
// used for release lookup by tag.
func tagName(ref string) string {
	return strings.TrimPrefix(ref, "refs/tags/")
}
