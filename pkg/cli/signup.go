package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/hrops-lab/schedctl/pkg/cli/config"
	"github.com/hrops-lab/schedctl/pkg/controller/callback"
	"github.com/hrops-lab/schedctl/pkg/usecase"
)

func cmdSignup() *cli.Command {
	var clientCfg config.Client
	var email string
	var password string
	var name string
	var status string
	var credentialsPath string
	var linkedinClientID string
	var linkedinClientSecret string
	var authTimeout time.Duration

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
		&cli.StringFlag{
			Name:        "name",
			Usage:       "Display name",
			Destination: &name,
		},
		&cli.StringFlag{
			Name:        "status",
			Usage:       "Profile status line",
			Destination: &status,
		},
		&cli.StringFlag{
			Name:        "credentials",
			Usage:       "Path to the Google OAuth credentials JSON file",
			Destination: &credentialsPath,
		},
		&cli.StringFlag{
			Name:        "linkedin-client-id",
			Usage:       "LinkedIn application client ID (optional)",
			Sources:     cli.EnvVars("SCHEDCTL_LINKEDIN_CLIENT_ID"),
			Destination: &linkedinClientID,
		},
		&cli.StringFlag{
			Name:        "linkedin-client-secret",
			Usage:       "LinkedIn application client secret (optional)",
			Sources:     cli.EnvVars("SCHEDCTL_LINKEDIN_CLIENT_SECRET"),
			Destination: &linkedinClientSecret,
		},
		&cli.DurationFlag{
			Name:        "auth-timeout",
			Usage:       "How long to wait for the browser authorization",
			Value:       5 * time.Minute,
			Destination: &authTimeout,
		},
	}
	flags = append(flags, clientCfg.Flags()...)

	return &cli.Command{
		Name:  "signup",
		Usage: "Create an account and run Google authorization",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			api, store, err := clientCfg.Configure(ctx)
			if err != nil {
				return err
			}
			uc := usecase.New(api, store)

			input := &usecase.SignupInput{
				Email:                email,
				Password:             password,
				Name:                 name,
				Status:               status,
				LinkedInClientID:     linkedinClientID,
				LinkedInClientSecret: linkedinClientSecret,
			}
			if credentialsPath != "" {
				// #nosec G304 - path is expected to be provided by CLI argument
				data, err := os.ReadFile(credentialsPath)
				if err != nil {
					return goerr.Wrap(err, "failed to read credentials file", goerr.V("path", credentialsPath))
				}
				input.Credentials = data
				input.CredentialsFileName = filepath.Base(credentialsPath)
			}

			result, err := uc.Signup(ctx, input)
			if err != nil {
				return err
			}

			fmt.Println("Account created. Open the following URL in your browser to authorize Google access:")
			fmt.Println()
			fmt.Println("  " + result.AuthorizationURL)
			fmt.Println()
			fmt.Println("Waiting for the authorization to complete...")

			redirect, err := waitForRedirect(ctx, clientCfg.CallbackAddr(), callback.ProviderGoogle, authTimeout)
			if err != nil {
				return err
			}
			if err := uc.CompleteGoogleAuth(ctx, redirect.Code, redirect.State); err != nil {
				return err
			}

			fmt.Println("Google authorization completed. You are logged in.")
			return nil
		},
	}
}
