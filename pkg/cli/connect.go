package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/hrops-lab/schedctl/pkg/cli/config"
	"github.com/hrops-lab/schedctl/pkg/controller/callback"
	"github.com/hrops-lab/schedctl/pkg/usecase"
)

func cmdConnectLinkedIn() *cli.Command {
	var clientCfg config.Client
	var authTimeout time.Duration

	flags := []cli.Flag{
		&cli.DurationFlag{
			Name:        "auth-timeout",
			Usage:       "How long to wait for the browser authorization",
			Value:       5 * time.Minute,
			Destination: &authTimeout,
		},
	}
	flags = append(flags, clientCfg.Flags()...)

	return &cli.Command{
		Name:  "connect-linkedin",
		Usage: "Authorize LinkedIn access for the logged-in account",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			api, store, err := clientCfg.Configure(ctx)
			if err != nil {
				return err
			}
			uc := usecase.New(api, store)

			url, err := uc.ConnectLinkedIn(ctx)
			if err != nil {
				if errors.Is(err, usecase.ErrLinkedInNotConfigured) {
					fmt.Println("LinkedIn API credentials are not configured for this account.")
					fmt.Println("Provide them during signup, or register them before connecting.")
				}
				return clearSessionOnAuthError(ctx, store, err)
			}

			fmt.Println("Open the following URL in your browser to authorize LinkedIn access:")
			fmt.Println()
			fmt.Println("  " + url)
			fmt.Println()
			fmt.Println("Waiting for the authorization to complete...")

			redirect, err := waitForRedirect(ctx, clientCfg.CallbackAddr(), callback.ProviderLinkedIn, authTimeout)
			if err != nil {
				return err
			}

			status, err := uc.CompleteLinkedInAuth(ctx, redirect.Code, redirect.State)
			if err != nil {
				return clearSessionOnAuthError(ctx, store, err)
			}
			if status != nil && status.LinkedIn.Valid {
				fmt.Println("LinkedIn account connected.")
			} else {
				fmt.Println("LinkedIn authorization completed, but the account is not reported as connected yet.")
			}
			return nil
		},
	}
}
