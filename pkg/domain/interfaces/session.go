package interfaces

import (
	"context"
	"errors"

	"github.com/hrops-lab/schedctl/pkg/domain/model"
)

// ErrNoSession is returned by Load when no session is stored or the stored
// data is not a complete identity pair.
var ErrNoSession = errors.New("no stored session")

// SessionStore persists the authenticated session across runs. Save and
// Clear are atomic: readers never observe a partial identity pair.
type SessionStore interface {
	Save(ctx context.Context, session *model.Session) error
	Load(ctx context.Context) (*model.Session, error)
	Clear(ctx context.Context) error
}
