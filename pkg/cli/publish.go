package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/ahavic1/houston/pkg/cli/config"
	"github.com/ahavic1/houston/pkg/domain/model"
	"github.com/ahavic1/houston/pkg/infra/auth"
	gitinfra "github.com/ahavic1/houston/pkg/infra/git"
	githubinfra "github.com/ahavic1/houston/pkg/infra/github"
	"github.com/ahavic1/houston/pkg/infra/memcache"
	"github.com/ahavic1/houston/pkg/usecase"
)

func cmdPublish() *cli.Command {
	var (
		workspaceCfg config.Workspace
		appCfg       config.GitHubApp
		configPath   string
		ref          string
		assetLabel   string
	)

	flags := append(workspaceCfg.Flags(), appCfg.Flags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to a TOML configuration file",
			Destination: &configPath,
			Sources:     cli.EnvVars("HOUSTON_CONFIG"),
		},
		&cli.StringFlag{
			Name:        "ref",
			Usage:       "Tag reference the release was cut from",
			Destination: &ref,
		},
		&cli.StringFlag{
			Name:        "label",
			Usage:       "Optional asset label shown next to the file name",
			Destination: &assetLabel,
		},
	)

	return &cli.Command{
		Name:      "publish",
		Usage:     "Upload a built artifact onto an existing tagged release",
		ArgsUsage: "<repository URL> <artifact path>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 2 {
				return goerr.New("expected <repository URL> and <artifact path> arguments")
			}

			if configPath != "" {
				file, err := config.LoadFile(configPath)
				if err != nil {
					return err
				}
				file.Apply(&appCfg, &workspaceCfg)
			}

			repo, err := model.NewRepository(c.Args().Get(0))
			if err != nil {
				return err
			}
			if ref != "" {
				repo.Reference = ref
			}

			var privateKey []byte
			if appCfg.Enabled() {
				if privateKey, err = appCfg.PrivateKey(); err != nil {
					return err
				}
			}

			authz, err := auth.New(appCfg.AppID, privateKey, memcache.New(0, 0))
			if err != nil {
				return err
			}

			engine := gitinfra.NewCloneEngine(workspaceCfg.ScratchDir)
			publisher := githubinfra.NewClient(authz)
			releaseUC := usecase.NewRelease(engine, publisher, publisher)

			dest, err := os.MkdirTemp(workspaceCfg.ScratchDir, "houston-src-")
			if err != nil {
				return goerr.Wrap(err, "failed to create working directory")
			}
			defer os.RemoveAll(dest)

			artifact := c.Args().Get(1)
			pkg := &model.Package{
				Path:        artifact,
				Name:        filepath.Base(artifact),
				Description: assetLabel,
			}

			published, err := releaseUC.PublishRelease(ctx, repo, dest, pkg)
			if err != nil {
				return err
			}

			ctxlog.From(ctx).Info("Artifact published",
				"name", published.Name, "github_id", published.GithubID)
			return nil
		},
	}
}
