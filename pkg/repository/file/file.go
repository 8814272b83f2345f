package file

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hrops-lab/schedctl/pkg/domain/interfaces"
	"github.com/hrops-lab/schedctl/pkg/domain/model"
	"github.com/hrops-lab/schedctl/pkg/utils/logging"
)

// Store persists the session as a JSON file. Writes go through a temp file
// and rename so a crash never leaves a partial identity pair on disk.
type Store struct {
	path string
}

// New creates a file-backed session store at the given path
func New(path string) (*Store, error) {
	if path == "" {
		return nil, goerr.New("session file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, goerr.Wrap(err, "failed to create session directory", goerr.V("path", path))
	}
	return &Store{path: path}, nil
}

func (s *Store) Save(ctx context.Context, session *model.Session) error {
	if err := session.Validate(); err != nil {
		return goerr.Wrap(err, "refusing to persist incomplete session")
	}

	data, err := json.Marshal(session)
	if err != nil {
		return goerr.Wrap(err, "failed to encode session")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return goerr.Wrap(err, "failed to write session file", goerr.V("path", tmp))
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return goerr.Wrap(err, "failed to commit session file", goerr.V("path", s.path))
	}
	return nil
}

func (s *Store) Load(ctx context.Context) (*model.Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, interfaces.ErrNoSession
		}
		return nil, goerr.Wrap(err, "failed to read session file", goerr.V("path", s.path))
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		// Corrupt content is treated as logged out rather than fatal
		logging.From(ctx).Warn("session file is corrupt, treating as logged out", "path", s.path)
		return nil, interfaces.ErrNoSession
	}

	if !session.IsValid() {
		return nil, interfaces.ErrNoSession
	}
	return &session, nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return goerr.Wrap(err, "failed to remove session file", goerr.V("path", s.path))
	}
	return nil
}
