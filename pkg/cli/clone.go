package cli

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/ahavic1/houston/pkg/cli/config"
	"github.com/ahavic1/houston/pkg/domain/model"
	gitinfra "github.com/ahavic1/houston/pkg/infra/git"
)

func cmdClone() *cli.Command {
	var (
		workspaceCfg config.Workspace
		configPath   string
		ref          string
	)

	flags := append(workspaceCfg.Flags(),
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to a TOML configuration file",
			Destination: &configPath,
			Sources:     cli.EnvVars("HOUSTON_CONFIG"),
		},
		&cli.StringFlag{
			Name:        "ref",
			Usage:       "Reference to check out (defaults to the primary branch)",
			Destination: &ref,
		},
	)

	return &cli.Command{
		Name:      "clone",
		Usage:     "Clone a repository reference into a plain working tree",
		ArgsUsage: "<repository URL> <destination>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 2 {
				return goerr.New("expected <repository URL> and <destination> arguments")
			}

			if configPath != "" {
				file, err := config.LoadFile(configPath)
				if err != nil {
					return err
				}
				file.Apply(&config.GitHubApp{}, &workspaceCfg)
			}

			repo, err := model.NewRepository(c.Args().Get(0))
			if err != nil {
				return err
			}

			engine := gitinfra.NewCloneEngine(workspaceCfg.ScratchDir)
			if err := engine.Clone(ctx, repo, c.Args().Get(1), ref); err != nil {
				return err
			}

			ctxlog.From(ctx).Info("Clone complete", "dest", c.Args().Get(1))
			return nil
		},
	}
}
