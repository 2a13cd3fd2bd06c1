package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/ahavic1/houston/pkg/cli/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "houston.toml")
	gt.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
[github]
app_id = "1234"
private_key = "/etc/houston/app.pem"

[workspace]
scratch_dir = "/var/tmp/houston"
`)

	file, err := config.LoadFile(path)
	gt.NoError(t, err)
	gt.Value(t, file.GitHub.AppID).Equal("1234")
	gt.Value(t, file.GitHub.PrivateKey).Equal("/etc/houston/app.pem")
	gt.Value(t, file.Workspace.ScratchDir).Equal("/var/tmp/houston")
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := config.LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	gt.Error(t, err)
}

func TestLoadFile_Malformed(t *testing.T) {
	path := writeConfig(t, "[github\napp_id =")
	_, err := config.LoadFile(path)
	gt.Error(t, err)
}

func TestFile_Apply(t *testing.T) {
	path := writeConfig(t, `
[github]
app_id = "1234"
private_key = "/etc/houston/app.pem"

[workspace]
scratch_dir = "/var/tmp/houston"
`)

	file, err := config.LoadFile(path)
	gt.NoError(t, err)

	t.Run("fills empty settings", func(t *testing.T) {
		var app config.GitHubApp
		var ws config.Workspace
		file.Apply(&app, &ws)
		gt.Value(t, app.AppID).Equal("1234")
		gt.Value(t, app.PrivateKeyPath).Equal("/etc/houston/app.pem")
		gt.Value(t, ws.ScratchDir).Equal("/var/tmp/houston")
	})

	t.Run("flags take precedence", func(t *testing.T) {
		app := config.GitHubApp{AppID: "9999", PrivateKeyPath: "/other.pem"}
		ws := config.Workspace{ScratchDir: "/elsewhere"}
		file.Apply(&app, &ws)
		gt.Value(t, app.AppID).Equal("9999")
		gt.Value(t, app.PrivateKeyPath).Equal("/other.pem")
		gt.Value(t, ws.ScratchDir).Equal("/elsewhere")
	})
}
