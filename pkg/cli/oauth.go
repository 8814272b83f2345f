package cli

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hrops-lab/schedctl/pkg/controller/callback"
	"github.com/hrops-lab/schedctl/pkg/utils/errutil"
)

// waitForRedirect runs a local callback listener until the provider delivers
// a (code, state) pair or the timeout elapses. Redirects for other providers
// arriving on the same listener are ignored.
func waitForRedirect(ctx context.Context, addr string, provider callback.Provider, timeout time.Duration) (*callback.Result, error) {
	srv := callback.New(addr)
	if err := srv.Start(ctx); err != nil {
		return nil, err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		errutil.Handle(ctx, srv.Shutdown(shutdownCtx), "failed to stop callback listener")
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, goerr.Wrap(ctx.Err(), "canceled while waiting for authorization")
		case <-timer.C:
			return nil, goerr.New("timed out waiting for authorization",
				goerr.V("provider", provider), goerr.V("timeout", timeout))
		case result := <-srv.Results():
			if result.Provider != provider {
				continue
			}
			if result.Err != "" {
				return nil, goerr.New("authorization was not granted",
					goerr.V("provider", provider), goerr.V("reason", result.Err))
			}
			return &result, nil
		}
	}
}
