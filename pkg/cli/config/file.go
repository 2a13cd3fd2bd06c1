package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
)

// File is an optional TOML configuration file. Values from the file only fill
// settings the flags and environment left empty.
//
//	[github]
//	app_id = "1234"
//	private_key = "/etc/houston/app.pem"
//
//	[workspace]
//	scratch_dir = "/var/tmp/houston"
type File struct {
	GitHub struct {
		AppID      string `toml:"app_id"`
		PrivateKey string `toml:"private_key"`
	} `toml:"github"`
	Workspace struct {
		ScratchDir string `toml:"scratch_dir"`
	} `toml:"workspace"`
}

// LoadFile parses the TOML configuration at path
func LoadFile(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}

	var f File
	if err := toml.Unmarshal(raw, &f); err != nil {
		return nil, goerr.Wrap(err, "failed to parse config file", goerr.V("path", path))
	}
	return &f, nil
}

// Apply copies file values into settings that are still empty
func (f *File) Apply(app *GitHubApp, ws *Workspace) {
	if app.AppID == "" {
		app.AppID = f.GitHub.AppID
	}
	if app.PrivateKeyPath == "" {
		app.PrivateKeyPath = f.GitHub.PrivateKey
	}
	if ws.ScratchDir == "" {
		ws.ScratchDir = f.Workspace.ScratchDir
	}
}
