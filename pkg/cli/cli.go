package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/hrops-lab/schedctl/pkg/cli/config"
	"github.com/hrops-lab/schedctl/pkg/utils/logging"
)

func Run(ctx context.Context, args []string, version string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logging.Default().Error("panic in command execution", "panic", r)
			err = goerr.New("unexpected internal error", goerr.V("panic", r))
		}
	}()

	var loggerCfg config.Logger
	var closer func()

	app := &cli.Command{
		Name:    "schedctl",
		Usage:   "Administrative console for the service scheduler backend",
		Version: version,
		Flags:   loggerCfg.Flags(),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			f, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closer = f

			logging.Default().Debug("Starting schedctl", "logger", loggerCfg)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if closer != nil {
				closer()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdSignup(),
			cmdLogin(),
			cmdLogout(),
			cmdStatus(),
			cmdServices(),
			cmdConnectLinkedIn(),
			cmdJobs(),
			cmdChat(),
			cmdLogs(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		logging.Default().Error("failed to run app", "error", err)
		return err
	}

	return nil
}
