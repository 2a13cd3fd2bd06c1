package github

import (
	"context"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/ahavic1/houston/pkg/domain/model"
	"github.com/ahavic1/houston/pkg/domain/types"
)

// PublishLog files log as a labeled issue on repo and returns a copy carrying
// the server issued issue id. A log whose GithubID is already set is returned
// unchanged without any network call.
func (c *Client) PublishLog(ctx context.Context, log *model.Log, repo *model.Repository, _ string) (*model.Log, error) {
	if log.Published() {
		ctxlog.From(ctx).Debug("Log already published, skipping", "github_id", log.GithubID)
		return log, nil
	}

	gh := c.api(repo)
	if err := c.ensureLabel(ctx, gh, repo); err != nil {
		return nil, err
	}

	issue, _, err := gh.Issues.Create(ctx, repo.Owner, repo.Name, &github.IssueRequest{
		Title:  github.Ptr(log.Title),
		Body:   github.Ptr(log.Body),
		Labels: &[]string{types.LabelName},
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create issue",
			goerr.V("owner", repo.Owner), goerr.V("name", repo.Name), goerr.V("title", log.Title))
	}

	published := *log
	published.GithubID = issue.GetID()
	return &published, nil
}

// ensureLabel makes sure the categorization label exists on the repository.
// Any fetch failure is treated as "label missing" and creation is attempted;
// only a failed creation is surfaced.
func (c *Client) ensureLabel(ctx context.Context, gh *github.Client, repo *model.Repository) error {
	if _, _, err := gh.Issues.GetLabel(ctx, repo.Owner, repo.Name, types.LabelName); err == nil {
		return nil
	}

	ctxlog.From(ctx).Debug("Label missing, creating", "label", types.LabelName)
	_, _, err := gh.Issues.CreateLabel(ctx, repo.Owner, repo.Name, &github.Label{
		Name:        github.Ptr(types.LabelName),
		Color:       github.Ptr(types.LabelColor),
		Description: github.Ptr(types.LabelDescription),
	})
	if err != nil {
		return goerr.Wrap(err, "failed to create label",
			goerr.V("owner", repo.Owner), goerr.V("name", repo.Name), goerr.V("label", types.LabelName))
	}
	return nil
}
