package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/ahavic1/houston/pkg/domain/interfaces"
	"github.com/ahavic1/houston/pkg/domain/model"
	"github.com/ahavic1/houston/pkg/utils/async"
)

type releaseUseCase struct {
	source   interfaces.CodeSource
	packages interfaces.PackagePublisher
	logs     interfaces.LogPublisher
}

// NewRelease creates a ReleaseUseCase on top of the given capabilities
func NewRelease(source interfaces.CodeSource, packages interfaces.PackagePublisher, logs interfaces.LogPublisher) interfaces.ReleaseUseCase {
	return &releaseUseCase{
		source:   source,
		packages: packages,
		logs:     logs,
	}
}

// PublishRelease clones the repository's reference into dest and uploads pkg
// onto the release matching that reference. A publish failure is reported as
// a labeled issue in the background; the original error is still returned.
func (uc *releaseUseCase) PublishRelease(ctx context.Context, repo *model.Repository, dest string, pkg *model.Package) (*model.Package, error) {
	runID := uuid.NewString()
	logger := ctxlog.From(ctx).With("run_id", runID, "owner", repo.Owner, "name", repo.Name, "ref", repo.Reference)
	ctx = ctxlog.With(ctx, logger)

	logger.Info("Publishing release", "package", pkg.Name)

	if err := uc.source.Clone(ctx, repo, dest, repo.Reference); err != nil {
		return nil, goerr.Wrap(err, "failed to materialize source", goerr.V("run_id", runID))
	}

	published, err := uc.packages.PublishPackage(ctx, pkg, repo, repo.Reference)
	if err != nil {
		uc.reportFailure(ctx, repo, pkg, err)
		return nil, goerr.Wrap(err, "failed to publish package", goerr.V("run_id", runID))
	}

	logger.Info("Release published", "package", published.Name, "github_id", published.GithubID)
	return published, nil
}

// reportFailure files the publish error as an issue without blocking the
// caller. Errors during filing are logged, not propagated.
func (uc *releaseUseCase) reportFailure(ctx context.Context, repo *model.Repository, pkg *model.Package, cause error) {
	log := &model.Log{
		Title: fmt.Sprintf("Release failed for %s/%s (%s)", repo.Owner, repo.Name, pkg.Name),
		Body:  cause.Error(),
	}

	ref := repo.Reference
	async.Dispatch(ctx, func(ctx context.Context) error {
		if _, err := uc.logs.PublishLog(ctx, log, repo, ref); err != nil {
			return goerr.Wrap(err, "failed to file failure log")
		}
		return nil
	})
}
