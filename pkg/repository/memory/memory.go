package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hrops-lab/schedctl/pkg/domain/interfaces"
	"github.com/hrops-lab/schedctl/pkg/domain/model"
)

// Store keeps the session in memory. Used by tests and ephemeral runs.
type Store struct {
	mu      sync.RWMutex
	session *model.Session
}

// New creates an empty in-memory session store
func New() *Store {
	return &Store{}
}

func (s *Store) Save(ctx context.Context, session *model.Session) error {
	if err := session.Validate(); err != nil {
		return goerr.Wrap(err, "refusing to store incomplete session")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *session
	s.session = &copied
	return nil
}

func (s *Store) Load(ctx context.Context) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.session.IsValid() {
		return nil, interfaces.ErrNoSession
	}

	copied := *s.session
	return &copied, nil
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = nil
	return nil
}
