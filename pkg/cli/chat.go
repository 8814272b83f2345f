package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/hrops-lab/schedctl/pkg/cli/config"
	"github.com/hrops-lab/schedctl/pkg/domain/types"
	"github.com/hrops-lab/schedctl/pkg/service/chat"
	"github.com/hrops-lab/schedctl/pkg/usecase"
	"github.com/hrops-lab/schedctl/pkg/utils/async"
	"github.com/hrops-lab/schedctl/pkg/utils/errutil"
)

func cmdChat() *cli.Command {
	var clientCfg config.Client

	return &cli.Command{
		Name:  "chat",
		Usage: "Chat with the scheduler assistant",
		Flags: clientCfg.Flags(),
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

			channel, err := chat.New(clientCfg.WSBaseURL(), sess)
			if err != nil {
				return err
			}
			if err := channel.Start(ctx); err != nil {
				return err
			}
			defer channel.Close()

			fmt.Println("Connected. Type a message, or `quit` to leave.")

			// Print assistant traffic as it arrives
			async.Dispatch(ctx, func(ctx context.Context) error {
				for msg := range channel.Events() {
					if msg.Role == types.RoleAssistant {
						assistantColor.Printf("assistant> ")
						fmt.Println(msg.Content)
					}
				}
				return nil
			})

			input := make(chan string)
			go func() {
				defer close(input)
				scanner := bufio.NewScanner(os.Stdin)
				for scanner.Scan() {
					input <- scanner.Text()
				}
			}()

			for {
				userColor.Print("you> ")
				select {
				case <-ctx.Done():
					return ctx.Err()

				case <-channel.Done():
					fmt.Println()
					if chErr := channel.Err(); errors.Is(chErr, chat.ErrAuthClosed) {
						// The backend refused the token, so the session is dead
						errutil.Handle(ctx, store.Clear(ctx), "failed to clear rejected session")
						fmt.Println("Your session is no longer valid. Please log in again.")
						return chErr
					}
					return channel.Err()

				case line, ok := <-input:
					if !ok {
						return nil
					}
					text := strings.TrimSpace(line)
					if text == "" {
						continue
					}
					if text == "quit" || text == "exit" {
						return nil
					}
					if err := channel.Send(ctx, text); err != nil {
						if errors.Is(err, chat.ErrNotConnected) {
							fmt.Println("Not connected right now. Your message was not sent; try again shortly.")
							continue
						}
						return err
					}
				}
			}
		},
	}
}
