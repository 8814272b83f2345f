package types

// UserID identifies a user account on the scheduler backend.
// The backend issues numeric IDs but the client treats them as opaque text.
type UserID string

// String returns the string representation of the user ID
func (id UserID) String() string {
	return string(id)
}

// IsEmpty returns true when no user ID is set
func (id UserID) IsEmpty() bool {
	return id == ""
}

// WebSocket close codes the backend uses to signal authentication failure.
// Both are terminal: the client must not reconnect and should prompt for
// re-login instead.
const (
	CloseCodeAuthFailed  = 4001
	CloseCodeAuthExpired = 4003
)

// IsAuthCloseCode reports whether the close code signals an authentication
// failure
func IsAuthCloseCode(code int) bool {
	return code == CloseCodeAuthFailed || code == CloseCodeAuthExpired
}
