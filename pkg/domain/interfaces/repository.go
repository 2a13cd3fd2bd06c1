package interfaces

import (
	"context"

	"github.com/ahavic1/houston/pkg/domain/model"
)

// CodeSource materializes source trees from a remote repository
type CodeSource interface {
	// Clone checks out ref into dest as a plain working tree with no
	// version control metadata left behind. An empty ref means the
	// repository's own reference.
	Clone(ctx context.Context, repo *model.Repository, dest, ref string) error

	// ListReferences enumerates every reference name the remote advertises
	ListReferences(ctx context.Context, repo *model.Repository) ([]string, error)
}

// PackagePublisher attaches built artifacts to tagged releases
type PackagePublisher interface {
	// PublishPackage uploads pkg as an asset of the release tagged ref and
	// returns a copy carrying the server issued asset id. Already published
	// packages are returned unchanged without network I/O.
	PublishPackage(ctx context.Context, pkg *model.Package, repo *model.Repository, ref string) (*model.Package, error)
}

// LogPublisher files failure reports as labeled issues
type LogPublisher interface {
	// PublishLog opens an issue for log and returns a copy carrying the
	// server issued id. Already filed logs are returned unchanged without
	// network I/O.
	PublishLog(ctx context.Context, log *model.Log, repo *model.Repository, ref string) (*model.Log, error)
}

// Authorizer produces the Authorization header value for API calls against a
// repository
type Authorizer interface {
	// Header returns "Bearer <token>" for static credentials or
	// "token <installation token>" in installation mode
	Header(ctx context.Context, repo *model.Repository) (string, error)
}

// TokenCache stores installation tokens keyed by installation id. The cache
// service is owned by the surrounding application; its expiry policy governs
// staleness.
type TokenCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
}
