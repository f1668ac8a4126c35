package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/meteo/pkg/workflow"
	"github.com/urfave/cli/v3"
)

// dataCommands are the names a workflow may use to prepare the data
var dataCommands = []string{"prepare", "prepare-data"}

func cmdValidateWorkflow() *cli.Command {
	return &cli.Command{
		Name:      "validate-workflow",
		Usage:     "Check the GitHub Actions workflow preparing the data",
		ArgsUsage: "[path]",
		Action: func(ctx context.Context, c *cli.Command) error {
			path := c.Args().First()
			if path == "" {
				path = workflow.DefaultPath
			}

			wf, err := workflow.Load(path)
			if err != nil {
				return err
			}
			if err := wf.Validate(dataCommands); err != nil {
				return goerr.Wrap(err, "invalid workflow", goerr.V("path", path))
			}

			fmt.Fprintf(os.Stdout, "%s: ok\n", path)
			return nil
		},
	}
}
