package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
)

// ErrNoToken is returned when the store has never been written.
var ErrNoToken = errors.New("no stored token")

// FileTokenStore keeps one OAuth token as JSON on disk.
type FileTokenStore struct {
	path string
	mu   sync.Mutex
}

// NewFileTokenStore points the store at path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// Path returns the backing file.
func (s *FileTokenStore) Path() string {
	return s.path
}

// Load reads the stored token.
func (s *FileTokenStore) Load() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w at %s", ErrNoToken, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("decode token %s: %w", s.path, err)
	}
	return &tok, nil
}

// Save writes the token atomically with owner-only permissions.
func (s *FileTokenStore) Save(tok *oauth2.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return fmt.Errorf("create temp token: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write token: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod token: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close token: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace token: %w", err)
	}
	return nil
}

// persistingSource saves every newly minted token back to the store.
type persistingSource struct {
	base  oauth2.TokenSource
	store *FileTokenStore
	mu    sync.Mutex
	last  string
}

// PersistingTokenSource refreshes through base and rewrites the store when the access token changes.
func PersistingTokenSource(base oauth2.TokenSource, store *FileTokenStore, initial *oauth2.Token) oauth2.TokenSource {
	s := &persistingSource{base: base, store: store}
	if initial != nil {
		s.last = initial.AccessToken
	}
	return oauth2.ReuseTokenSource(initial, s)
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		if err := s.store.Save(tok); err != nil {
			return nil, err
		}
		s.last = tok.AccessToken
	}
	return tok, nil
}
