package config

import (
	"os"

	"github.com/urfave/cli/v3"
)

// Workspace holds the scratch directory used for disposable clones. It is
// explicit configuration handed to the clone engine at construction; the
// caller tears it down after use.
type Workspace struct {
	ScratchDir string
}

// Flags returns CLI flags for workspace configuration
func (c *Workspace) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "scratch-dir",
			Usage:       "Directory for disposable clones",
			Value:       os.TempDir(),
			Destination: &c.ScratchDir,
			Sources:     cli.EnvVars("HOUSTON_SCRATCH_DIR"),
		},
	}
}
