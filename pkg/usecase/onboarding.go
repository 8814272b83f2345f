package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hrops-lab/schedctl/pkg/domain/model"
	"github.com/hrops-lab/schedctl/pkg/service/scheduler"
	"github.com/hrops-lab/schedctl/pkg/utils/logging"
)

// SignupInput carries everything collected during account creation. The
// LinkedIn application credentials are optional; the Google credentials file
// is not.
type SignupInput struct {
	Email    string
	Password string
	Name     string
	Status   string

	CredentialsFileName string
	Credentials         []byte

	LinkedInClientID     string
	LinkedInClientSecret string
}

// SignupResult reports the session issued for the new account and the Google
// authorization URL the user must visit to finish onboarding.
type SignupResult struct {
	Session          *model.Session
	AuthorizationURL string
}

// Signup runs the onboarding sequence: create the account, persist the
// session, upload the Google credentials file, optionally register LinkedIn
// application credentials, then initiate Google authorization. Any failure
// aborts the sequence and is surfaced to the caller; the user retries from
// the failed step.
func (uc *UseCases) Signup(ctx context.Context, input *SignupInput) (*SignupResult, error) {
	if msg := missingFieldsMessage(map[string]string{
		"Email":    input.Email,
		"Password": input.Password,
		"Name":     input.Name,
		"Status":   input.Status,
	}, "Email", "Password", "Name", "Status"); msg != "" {
		return nil, goerr.Wrap(ErrValidation, msg)
	}
	if len(input.Credentials) == 0 {
		return nil, goerr.Wrap(ErrValidation, "Google credentials file is required")
	}

	sess, err := uc.api.CreateUser(ctx, &scheduler.SignupRequest{
		Email:    input.Email,
		Password: input.Password,
		Name:     input.Name,
		Status:   input.Status,
	})
	if err != nil {
		return nil, err
	}
	if err := uc.store.Save(ctx, sess); err != nil {
		return nil, goerr.Wrap(err, "failed to persist session")
	}

	if err := uc.api.UploadCredentials(ctx, sess, input.CredentialsFileName, input.Credentials); err != nil {
		return nil, err
	}

	if input.LinkedInClientID != "" && input.LinkedInClientSecret != "" {
		if err := uc.api.SaveLinkedInApp(ctx, sess, &model.LinkedInAppCredentials{
			ClientID:     input.LinkedInClientID,
			ClientSecret: input.LinkedInClientSecret,
		}); err != nil {
			return nil, err
		}
	} else if input.LinkedInClientID != "" || input.LinkedInClientSecret != "" {
		logging.From(ctx).Warn("partial LinkedIn credentials provided, skipping registration")
	}

	init, err := uc.api.InitiateGoogleAuth(ctx, sess)
	if err != nil {
		return nil, err
	}
	if init.AuthorizationURL == "" {
		return nil, goerr.New("Failed to initiate Google authentication",
			goerr.V("status", init.Status))
	}

	return &SignupResult{Session: sess, AuthorizationURL: init.AuthorizationURL}, nil
}

// CompleteGoogleAuth submits the one-shot (code, state) pair delivered by the
// Google redirect. A pair that was already submitted is absorbed silently so
// duplicate redirect deliveries cause at most one exchange.
func (uc *UseCases) CompleteGoogleAuth(ctx context.Context, code, state string) error {
	sess, err := uc.CurrentSession(ctx)
	if err != nil {
		return err
	}
	if !uc.googleCodes.begin(code, state) {
		logging.From(ctx).Debug("duplicate Google callback ignored")
		return nil
	}
	return uc.api.CompleteGoogleAuth(ctx, sess, code, state)
}

// ConnectLinkedIn initiates LinkedIn authorization and returns the URL the
// user must visit. It fails with ErrLinkedInNotConfigured when no application
// credentials were registered for the account.
func (uc *UseCases) ConnectLinkedIn(ctx context.Context) (string, error) {
	sess, err := uc.CurrentSession(ctx)
	if err != nil {
		return "", err
	}

	status, err := uc.api.CredentialsStatus(ctx, sess)
	if err != nil {
		return "", err
	}
	if !status.LinkedIn.HasAppCredentials {
		return "", goerr.Wrap(ErrLinkedInNotConfigured,
			"register a LinkedIn client ID and secret first")
	}

	init, err := uc.api.InitiateLinkedInAuth(ctx, sess)
	if err != nil {
		return "", err
	}
	if init.AuthorizationURL == "" {
		return "", goerr.New("Failed to initiate LinkedIn authentication",
			goerr.V("status", init.Status))
	}
	return init.AuthorizationURL, nil
}

// CompleteLinkedInAuth submits the one-shot (code, state) pair from the
// LinkedIn redirect and returns the refreshed credential status. Duplicate
// pairs are absorbed with a nil status.
func (uc *UseCases) CompleteLinkedInAuth(ctx context.Context, code, state string) (*model.CredentialStatus, error) {
	sess, err := uc.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	if !uc.linkedinCodes.begin(code, state) {
		logging.From(ctx).Debug("duplicate LinkedIn callback ignored")
		return nil, nil
	}
	if err := uc.api.CompleteLinkedInAuth(ctx, sess, code, state); err != nil {
		return nil, err
	}
	return uc.api.CredentialsStatus(ctx, sess)
}
