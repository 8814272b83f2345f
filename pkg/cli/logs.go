package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hrops-lab/schedctl/pkg/cli/config"
	"github.com/hrops-lab/schedctl/pkg/domain/model"
	"github.com/hrops-lab/schedctl/pkg/service/logstream"
	"github.com/hrops-lab/schedctl/pkg/usecase"
)

func cmdLogs() *cli.Command {
	var clientCfg config.Client
	var follow bool

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "follow",
			Aliases:     []string{"f"},
			Usage:       "Keep the stream open and print records as they arrive",
			Value:       true,
			Destination: &follow,
		},
	}
	flags = append(flags, clientCfg.Flags()...)

	return &cli.Command{
		Name:  "logs",
		Usage: "Tail activity logs for the logged-in account",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			api, store, err := clientCfg.Configure(ctx)
			if err != nil {
				return err
			}
			uc := usecase.New(api, store)

			sess, err := uc.CurrentSession(ctx)
			if err != nil {
				return clearSessionOnAuthError(ctx, store, err)
			}

			stream, err := logstream.New(clientCfg.WSBaseURL(), sess.UserID)
			if err != nil {
				return err
			}
			if err := stream.Start(ctx); err != nil {
				return err
			}
			defer stream.Close()

			if !follow {
				for _, rec := range stream.Recent() {
					printLogRecord(rec)
				}
				return nil
			}

			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-stream.Done():
					return nil
				case rec := <-stream.Events():
					printLogRecord(rec)
				}
			}
		},
	}
}

func printLogRecord(rec model.LogRecord) {
	disabledColor.Printf("%s  ", rec.Timestamp)
	fmt.Println(rec.Message)
}
