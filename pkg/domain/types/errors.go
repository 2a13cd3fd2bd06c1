package types

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors surfaced by repository operations. Callers match them with
// errors.Is after goerr wrapping.
var (
	// ErrInvalidRepository indicates a repository URL that does not point at
	// the supported hosting domain or cannot be parsed into owner/name
	ErrInvalidRepository = goerr.New("invalid repository URL")

	// ErrReferenceNotFound indicates a branch or tag that does not exist in
	// the cloned repository
	ErrReferenceNotFound = goerr.New("reference not found")

	// ErrReleaseNotFound indicates a release that does not exist for the
	// requested tag or has no asset upload endpoint
	ErrReleaseNotFound = goerr.New("release not found")
)
