package cli

import (
	"context"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/hrops-lab/schedctl/pkg/cli/config"
	"github.com/hrops-lab/schedctl/pkg/usecase"
)

func cmdJobs() *cli.Command {
	var clientCfg config.Client
	var timeline bool

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "timeline",
			Usage:       "Render upcoming runs as a timeline instead of a table",
			Destination: &timeline,
		},
	}
	flags = append(flags, clientCfg.Flags()...)

	return &cli.Command{
		Name:  "jobs",
		Usage: "List scheduled jobs for the logged-in account",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			api, store, err := clientCfg.Configure(ctx)
			if err != nil {
				return err
			}
			uc := usecase.New(api, store)

			jobs, err := uc.ListJobs(ctx)
			if err != nil {
				return clearSessionOnAuthError(ctx, store, err)
			}

			if timeline {
				renderTimeline(os.Stdout, jobs, time.Now())
				return nil
			}
			renderJobsTable(os.Stdout, jobs)
			return nil
		},
	}
}
