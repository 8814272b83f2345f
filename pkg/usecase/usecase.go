package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hrops-lab/schedctl/pkg/domain/interfaces"
	"github.com/hrops-lab/schedctl/pkg/domain/model"
	"github.com/hrops-lab/schedctl/pkg/service/scheduler"
)

// UseCases wires the scheduler API client and the session store into the
// console workflows. It is safe for use from a single goroutine; the OAuth
// callback guards are internally synchronized because browser redirects can
// arrive concurrently with the command loop.
type UseCases struct {
	api   *scheduler.Client
	store interfaces.SessionStore

	googleCodes   *completedCodes
	linkedinCodes *completedCodes
}

type Option func(*UseCases)

func New(api *scheduler.Client, store interfaces.SessionStore, opts ...Option) *UseCases {
	uc := &UseCases{
		api:           api,
		store:         store,
		googleCodes:   newCompletedCodes(),
		linkedinCodes: newCompletedCodes(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// CurrentSession returns the persisted session, or ErrSessionRequired when no
// valid session exists.
func (uc *UseCases) CurrentSession(ctx context.Context) (*model.Session, error) {
	sess, err := uc.store.Load(ctx)
	if err != nil {
		if errors.Is(err, interfaces.ErrNoSession) {
			return nil, goerr.Wrap(ErrSessionRequired, "no stored session")
		}
		return nil, goerr.Wrap(err, "failed to load session")
	}
	if !sess.IsValid() {
		return nil, goerr.Wrap(ErrSessionRequired, "stored session is incomplete")
	}
	return sess, nil
}

// Logout discards the stored session. Clearing an already empty store is not
// an error.
func (uc *UseCases) Logout(ctx context.Context) error {
	if err := uc.store.Clear(ctx); err != nil {
		return goerr.Wrap(err, "failed to clear session")
	}
	return nil
}

// Login authenticates against the scheduler backend and persists the
// resulting session.
func (uc *UseCases) Login(ctx context.Context, email, password string) (*model.Session, error) {
	if msg := missingFieldsMessage(map[string]string{
		"Email":    email,
		"Password": password,
	}, "Email", "Password"); msg != "" {
		return nil, goerr.Wrap(ErrValidation, msg)
	}

	sess, err := uc.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := uc.store.Save(ctx, sess); err != nil {
		return nil, goerr.Wrap(err, "failed to persist session")
	}
	return sess, nil
}
