package filestore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-auth-client/credentials"
	autherrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/pkg/errors"
)

var (
	_ credentials.Store              = (*Store)(nil)
	_ credentials.UsernameRememberer = (*Store)(nil)
)

// document is the on-disk layout. Keys match the persisted names used by
// every other client of the same API.
type document struct {
	Token              string `json:"token,omitempty"`
	RefreshToken       string `json:"refreshToken,omitempty"`
	RememberedUsername string `json:"rememberedUsername,omitempty"`
}

// Store persists credentials to a JSON file so they survive restarts.
// Every write goes to a temp file in the same directory followed by a rename,
// so readers in this or another process never observe a half written pair.
type Store struct {
	path string
	lock sync.RWMutex
}

// New returns a store backed by path, creating the parent directory when needed.
func New(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, storeError(err, "create credential directory")
	}
	return &Store{path: path}, nil
}

func (s *Store) Get(_ context.Context) (credentials.Pair, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	doc, err := s.read()
	if err != nil {
		return credentials.Pair{}, err
	}
	return credentials.Pair{Access: doc.Token, Refresh: doc.RefreshToken}, nil
}

func (s *Store) SetAccess(_ context.Context, access string) error {
	return s.update(func(doc *document) {
		doc.Token = access
	})
}

func (s *Store) SetBoth(_ context.Context, access, refresh string) error {
	return s.update(func(doc *document) {
		doc.Token = access
		doc.RefreshToken = refresh
	})
}

func (s *Store) Clear(_ context.Context) error {
	return s.update(func(doc *document) {
		doc.Token = ""
		doc.RefreshToken = ""
	})
}

func (s *Store) RememberUsername(_ context.Context, username string) error {
	return s.update(func(doc *document) {
		doc.RememberedUsername = username
	})
}

func (s *Store) RememberedUsername(_ context.Context) (string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	doc, err := s.read()
	if err != nil {
		return "", err
	}
	return doc.RememberedUsername, nil
}

func (s *Store) update(mutate func(doc *document)) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	mutate(&doc)
	return s.write(doc)
}

func (s *Store) read() (document, error) {
	var doc document
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, storeError(err, "read credential file")
	}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, storeError(err, "decode credential file")
	}
	return doc, nil
}

func (s *Store) write(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return storeError(err, "encode credential file")
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".credentials-*")
	if err != nil {
		return storeError(err, "create temp credential file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return storeError(err, "write temp credential file")
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return storeError(err, "chmod temp credential file")
	}
	if err := tmp.Close(); err != nil {
		return storeError(err, "close temp credential file")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return storeError(err, "replace credential file")
	}
	return nil
}

// storeError marks I/O failures with ErrStore, keeping the cause and its stack.
func storeError(err error, msg string) error {
	return autherrors.Wrapf(errors.Wrap(err, msg), "%w", autherrors.ErrStore)
}
