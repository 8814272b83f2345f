package usecase

import "errors"

var (
	// ErrValidation marks input problems the user can fix before retrying.
	ErrValidation = errors.New("validation failed")

	// ErrSessionRequired is returned when an operation needs a logged-in
	// session and none is stored, or the stored one is incomplete.
	ErrSessionRequired = errors.New("login required")

	// ErrLinkedInNotConfigured is returned when LinkedIn OAuth is requested
	// before application credentials were saved for the user.
	ErrLinkedInNotConfigured = errors.New("LinkedIn API credentials are not configured")
)
