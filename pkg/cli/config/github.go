package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// GitHubApp holds GitHub App configuration for installation token exchange
type GitHubApp struct {
	AppID          string
	PrivateKeyPath string
}

// Flags returns CLI flags for GitHub App configuration
func (c *GitHubApp) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-app-id",
			Usage:       "GitHub App id used as the assertion issuer",
			Destination: &c.AppID,
			Sources:     cli.EnvVars("HOUSTON_GITHUB_APP_ID"),
		},
		&cli.StringFlag{
			Name:        "github-private-key",
			Usage:       "Path to the GitHub App PEM private key",
			Destination: &c.PrivateKeyPath,
			Sources:     cli.EnvVars("HOUSTON_GITHUB_PRIVATE_KEY"),
		},
	}
}

// Enabled reports whether installation auth is configured
func (c *GitHubApp) Enabled() bool {
	return c.AppID != "" && c.PrivateKeyPath != ""
}

// PrivateKey reads the configured PEM private key
func (c *GitHubApp) PrivateKey() ([]byte, error) {
	key, err := os.ReadFile(c.PrivateKeyPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read app private key", goerr.V("path", c.PrivateKeyPath))
	}
	return key, nil
}
