package model

// Package is a built artifact to be attached to a tagged release. The record
// itself is owned by the surrounding pipeline; this module reads the listed
// fields and writes back the server issued asset id after upload.
type Package struct {
	Path        string // Filesystem path of the built artifact
	Name        string // Asset file name on the release
	Description string // Optional asset label shown next to the name
	GithubID    int64  // Server issued asset id; non-zero means already published
}

// Published reports whether the package was already uploaded.
func (p *Package) Published() bool {
	return p.GithubID != 0
}

// Log is a failure report to be filed as a labeled issue.
type Log struct {
	Title    string // Issue title
	Body     string // Issue body, typically the failure log
	GithubID int64  // Server issued issue id; non-zero means already filed
}

// Published reports whether the log was already filed.
func (l *Log) Published() bool {
	return l.GithubID != 0
}
