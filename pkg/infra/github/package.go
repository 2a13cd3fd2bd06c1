package github

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/ahavic1/houston/pkg/domain/model"
	"github.com/ahavic1/houston/pkg/domain/types"
)

// PublishPackage uploads pkg onto the release tagged with ref and returns a
// copy of pkg carrying the server issued asset id. A package whose GithubID
// is already set is returned unchanged without any network call.
func (c *Client) PublishPackage(ctx context.Context, pkg *model.Package, repo *model.Repository, ref string) (*model.Package, error) {
	if pkg.Published() {
		ctxlog.From(ctx).Debug("Package already published, skipping", "github_id", pkg.GithubID)
		return pkg, nil
	}

	release, _, err := c.api(repo).Repositories.GetReleaseByTag(ctx, repo.Owner, repo.Name, tagName(ref))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch release",
			goerr.V("owner", repo.Owner), goerr.V("name", repo.Name), goerr.V("tag", tagName(ref)))
	}
	if release.GetUploadURL() == "" {
		return nil, goerr.Wrap(types.ErrReleaseNotFound, "release has no upload endpoint",
			goerr.V("owner", repo.Owner), goerr.V("name", repo.Name), goerr.V("tag", tagName(ref)))
	}

	assetID, err := c.uploadAsset(ctx, pkg, repo, release.GetUploadURL())
	if err != nil {
		return nil, err
	}

	published := *pkg
	published.GithubID = assetID
	return &published, nil
}

// uploadAsset streams the artifact body to the release's upload endpoint with
// a sniffed content type and the exact byte size.
func (c *Client) uploadAsset(ctx context.Context, pkg *model.Package, repo *model.Repository, uploadURL string) (int64, error) {
	file, err := os.Open(pkg.Path)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to open artifact", goerr.V("path", pkg.Path))
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to stat artifact", goerr.V("path", pkg.Path))
	}

	contentType, err := sniffContentType(file)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to sniff artifact content type", goerr.V("path", pkg.Path))
	}

	// The upload URL arrives as a URI template ending in {?name,label}
	endpoint, err := url.Parse(strings.SplitN(uploadURL, "{", 2)[0])
	if err != nil {
		return 0, goerr.Wrap(err, "unparsable upload URL", goerr.V("upload_url", uploadURL))
	}
	query := endpoint.Query()
	query.Set("name", pkg.Name)
	if pkg.Description != "" {
		query.Set("label", pkg.Description)
	}
	endpoint.RawQuery = query.Encode()

	header, err := c.authz.Header(ctx, repo)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), file)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to create upload request")
	}
	req.ContentLength = stat.Size()
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", types.AcceptV3)
	req.Header.Set("Authorization", header)
	req.Header.Set("User-Agent", types.UserAgent)

	ctxlog.From(ctx).Info("Uploading release asset",
		"name", pkg.Name, "size", stat.Size(), "content_type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, goerr.Wrap(err, "asset upload request failed", goerr.V("name", pkg.Name))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, goerr.New("asset upload returned non-success status",
			goerr.V("status", resp.StatusCode),
			goerr.V("name", pkg.Name),
			goerr.V("body", string(body)))
	}

	var asset struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&asset); err != nil {
		return 0, goerr.Wrap(err, "failed to decode asset upload response")
	}

	return asset.ID, nil
}

// sniffContentType detects the MIME type from at most the first
// types.SniffSize bytes of the artifact and rewinds the reader. Reading fewer
// bytes at end of file is fine; the bound keeps probing cheap for huge files.
func sniffContentType(file *os.File) (string, error) {
	buf := make([]byte, types.SniffSize)
	n, err := io.ReadFull(file, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return mimetype.Detect(buf[:n]).String(), nil
}
