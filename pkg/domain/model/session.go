package model

import (
	"log/slog"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hrops-lab/schedctl/pkg/domain/types"
)

// Session is the authenticated identity pair issued by the backend on login
// or signup. It is the single source of truth for "who is logged in"; every
// authenticated request derives its bearer header from it.
type Session struct {
	UserID      types.UserID `json:"user_id"`
	AccessToken string       `json:"access_token" masq:"secret"`
}

// NewSession creates a session from a login/signup response
func NewSession(userID types.UserID, accessToken string) *Session {
	return &Session{
		UserID:      userID,
		AccessToken: accessToken,
	}
}

// Validate checks that the session is a complete identity pair
func (s *Session) Validate() error {
	if s.UserID.IsEmpty() {
		return goerr.New("session user ID is required")
	}
	if s.AccessToken == "" {
		return goerr.New("session access token is required", goerr.V("user_id", s.UserID))
	}
	return nil
}

// IsValid reports whether the session is usable. Partial presence of the
// identity pair is treated as logged out.
func (s *Session) IsValid() bool {
	return s != nil && !s.UserID.IsEmpty() && s.AccessToken != ""
}

// BearerHeader returns the Authorization header value, prepending the
// Bearer scheme when the stored token lacks it.
func (s *Session) BearerHeader() string {
	return NormalizeBearer(s.AccessToken)
}

// NormalizeBearer prepends the Bearer scheme to a token unless it already
// carries one.
func NormalizeBearer(token string) string {
	if strings.HasPrefix(token, "Bearer ") {
		return token
	}
	return "Bearer " + token
}

// LogValue hides the access token from log output
func (s *Session) LogValue() slog.Value {
	if s == nil {
		return slog.StringValue("(none)")
	}
	return slog.GroupValue(
		slog.String("user_id", s.UserID.String()),
		slog.Int("token.len", len(s.AccessToken)),
	)
}
