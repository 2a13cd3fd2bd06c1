package model

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/ahavic1/houston/pkg/domain/types"
)

// Repository identifies a remote GitHub repository together with the
// credentials used to access it and the reference a release is built from.
type Repository struct {
	Host  string // Hosting domain, e.g. github.com
	Owner string // Repository owner (user or organization)
	Name  string // Repository name

	// AuthUsername is empty for anonymous access, types.InstallationUser for
	// GitHub App installation auth, or a literal username otherwise
	AuthUsername string
	// AuthPassword holds a personal access token, or the numeric installation
	// id (as string) when AuthUsername is types.InstallationUser
	AuthPassword string

	// Reference is the fully qualified ref a release is cut from
	Reference string
}

// colonSeparator matches the host:path separator in scp-like addresses such
// as github.com:owner/repo. The segment after the colon is inspected
// separately so numeric ports stay untouched.
var (
	colonSeparator = regexp.MustCompile(`^(https?://[^/:]+):([^/]+)`)
	portOnly       = regexp.MustCompile(`^[0-9]+$`)
)

// NewRepository parses a raw repository address into a Repository. See
// (*Repository).SetURL for the accepted forms.
func NewRepository(raw string) (*Repository, error) {
	repo := &Repository{
		Host:      types.DefaultHost,
		Reference: types.DefaultReference,
	}
	if err := repo.SetURL(raw); err != nil {
		return nil, err
	}
	return repo, nil
}

// SetURL parses and normalizes a repository address. Accepted forms:
//
//	https://[user[:pass]@]github.com/owner/name[.git]
//	git@github.com:owner/name[.git]
//	https://github.com:owner/name
//
// A credential pair with a username but no password is re-interpreted as an
// access token: GitHub never hands out a bare token in the username position,
// so the pair is rewritten to (x-access-token, <value>).
func (r *Repository) SetURL(raw string) error {
	if !strings.Contains(raw, "github") {
		return goerr.Wrap(types.ErrInvalidRepository, "address does not point at github", goerr.V("url", raw))
	}

	addr := strings.TrimSuffix(raw, ".git")
	if rest, ok := strings.CutPrefix(addr, "git@"); ok {
		addr = "https://" + rest
	}
	if !strings.Contains(addr, "://") {
		addr = "https://" + addr
	}
	if !strings.Contains(addr, "@") {
		// The colon-separator form never carries userinfo, so a colon after
		// the host is the scp-like path separator unless the whole segment up
		// to the next slash is a port number
		if m := colonSeparator.FindStringSubmatch(addr); m != nil && !portOnly.MatchString(m[2]) {
			addr = m[1] + "/" + addr[len(m[1])+1:]
		}
	}

	u, err := url.Parse(addr)
	if err != nil {
		return goerr.Wrap(types.ErrInvalidRepository, "unparsable address", goerr.V("url", raw))
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if u.Host == "" || len(segments) < 2 || segments[0] == "" || segments[1] == "" {
		return goerr.Wrap(types.ErrInvalidRepository, "address has no owner/name path", goerr.V("url", raw))
	}

	r.Host = u.Host
	r.Owner = segments[0]
	r.Name = segments[1]

	if u.User != nil {
		username := u.User.Username()
		password, _ := u.User.Password()
		if username != "" && password == "" {
			// Username-only parse result is a malformed token pair
			username, password = types.TokenUser, username
		}
		if username != "" {
			r.AuthUsername = username
		}
		if password != "" {
			r.AuthPassword = password
		}
	}

	return nil
}

// URL reconstructs the HTTPS address of the repository. Installation tokens
// travel in the Authorization header, never in the URL, so installation mode
// yields a bare address.
func (r *Repository) URL() string {
	host := r.Host
	if host == "" {
		host = types.DefaultHost
	}

	if r.AuthUsername != types.InstallationUser && (r.AuthUsername != "" || r.AuthPassword != "") {
		return fmt.Sprintf("https://%s:%s@%s/%s/%s.git", r.AuthUsername, r.AuthPassword, host, r.Owner, r.Name)
	}
	return fmt.Sprintf("https://%s/%s/%s.git", host, r.Owner, r.Name)
}

// IsInstallation reports whether the repository authenticates as a GitHub App
// installation.
func (r *Repository) IsInstallation() bool {
	return r.AuthUsername == types.InstallationUser
}

var (
	rdnnInvalid = regexp.MustCompile(`[^a-z0-9.]`)
	rdnnDots    = regexp.MustCompile(`\.+`)
)

// RDNN derives the reverse domain name identifier used as the package
// namespace, e.g. com.github.acme.widget.
func (r *Repository) RDNN() string {
	host := r.Host
	if host == "" {
		host = types.DefaultHost
	}

	labels := strings.Split(host, ".")
	for i, j := 0, len(labels)-1; i < j; i, j = i+1, j-1 {
		labels[i], labels[j] = labels[j], labels[i]
	}
	labels = append(labels, r.Owner, r.Name)

	rdnn := strings.ToLower(strings.Join(labels, "."))
	rdnn = rdnnInvalid.ReplaceAllString(rdnn, "")
	rdnn = rdnnDots.ReplaceAllString(rdnn, ".")
	return strings.Trim(rdnn, ".")
}
