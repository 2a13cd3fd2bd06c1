package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/ahavic1/houston/pkg/cli/config"
	"github.com/ahavic1/houston/pkg/domain/model"
	gitinfra "github.com/ahavic1/houston/pkg/infra/git"
)

func cmdRefs() *cli.Command {
	var workspaceCfg config.Workspace

	return &cli.Command{
		Name:      "refs",
		Usage:     "List every reference a repository advertises",
		ArgsUsage: "<repository URL>",
		Flags:     workspaceCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return goerr.New("expected <repository URL> argument")
			}

			repo, err := model.NewRepository(c.Args().Get(0))
			if err != nil {
				return err
			}

			engine := gitinfra.NewCloneEngine(workspaceCfg.ScratchDir)
			refs, err := engine.ListReferences(ctx, repo)
			if err != nil {
				return err
			}

			for _, name := range refs {
				fmt.Println(name)
			}
			return nil
		},
	}
}
