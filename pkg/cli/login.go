package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/urfave/cli/v3"

	"github.com/hrops-lab/schedctl/pkg/cli/config"
	"github.com/hrops-lab/schedctl/pkg/domain/interfaces"
	"github.com/hrops-lab/schedctl/pkg/domain/model"
	"github.com/hrops-lab/schedctl/pkg/service/scheduler"
	"github.com/hrops-lab/schedctl/pkg/usecase"
	"github.com/hrops-lab/schedctl/pkg/utils/errutil"
)

func cmdLogin() *cli.Command {
	var clientCfg config.Client
	var email string
	var password string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "email",
			Usage:       "Account email address",
			Sources:     cli.EnvVars("SCHEDCTL_EMAIL"),
			Destination: &email,
		},
		&cli.StringFlag{
			Name:        "password",
			Usage:       "Account password",
			Sources:     cli.EnvVars("SCHEDCTL_PASSWORD"),
			Destination: &password,
		},
	}
	flags = append(flags, clientCfg.Flags()...)

	return &cli.Command{
		Name:  "login",
		Usage: "Log in to the scheduler backend",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			api, store, err := clientCfg.Configure(ctx)
			if err != nil {
				return err
			}
			uc := usecase.New(api, store)

			sess, err := uc.Login(ctx, email, password)
			if err != nil {
				return err
			}
			fmt.Printf("Logged in as user %s.\n", sess.UserID)
			return nil
		},
	}
}

func cmdLogout() *cli.Command {
	var clientCfg config.Client

	return &cli.Command{
		Name:  "logout",
		Usage: "Discard the stored session",
		Flags: clientCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			api, store, err := clientCfg.Configure(ctx)
			if err != nil {
				return err
			}
			uc := usecase.New(api, store)

			if err := uc.Logout(ctx); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func cmdStatus() *cli.Command {
	var clientCfg config.Client

	return &cli.Command{
		Name:  "status",
		Usage: "Show the logged-in user and credential status",
		Flags: clientCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			api, store, err := clientCfg.Configure(ctx)
			if err != nil {
				return err
			}
			uc := usecase.New(api, store)

			plan := model.DefaultServicePlan()
			view, err := uc.BootstrapServices(ctx, plan)
			if err != nil {
				return clearSessionOnAuthError(ctx, store, err)
			}

			renderStatus(view)
			return nil
		},
	}
}

// clearSessionOnAuthError discards the stored session when the backend
// rejected it, so the next command starts from a clean logged-out state.
func clearSessionOnAuthError(ctx context.Context, store interfaces.SessionStore, err error) error {
	var apiErr *scheduler.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		errutil.Handle(ctx, store.Clear(ctx), "failed to clear rejected session")
		fmt.Println("Your session has expired. Please log in again.")
		return err
	}
	if errors.Is(err, usecase.ErrSessionRequired) {
		fmt.Println("Not logged in. Run `schedctl login` first.")
	}
	return err
}
