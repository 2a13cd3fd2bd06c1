package interfaces

import (
	"context"

	"github.com/ahavic1/houston/pkg/domain/model"
)

// ReleaseUseCase drives a single release publication: materialize the tagged
// source, upload the built artifact, and report failures as issues
type ReleaseUseCase interface {
	// PublishRelease clones repo's reference into dest and uploads pkg onto
	// the matching release. On publish failure a failure log is filed
	// asynchronously before the error is returned.
	PublishRelease(ctx context.Context, repo *model.Repository, dest string, pkg *model.Package) (*model.Package, error)
}
