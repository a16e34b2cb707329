package client

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// Session keys as persisted by the file store. Both values are stored as
// JSON under these names so sessions survive restarts and can be inspected.
const (
	sessionKeyUser   = "user"
	sessionKeyTokens = "tokens"
)

// ErrNoSession is returned when a session store holds no saved credentials.
var ErrNoSession = errors.New("no active session")

// Session holds the logged-in user and their token pair between requests.
// Implementations must be safe for concurrent use.
type Session interface {
	User() (*User, error)
	Tokens() (*TokenPair, error)
	Save(user *User, tokens *TokenPair) error
	Clear() error
}

// MemorySession keeps credentials in process memory only.
type MemorySession struct {
	mu     sync.RWMutex
	user   *User
	tokens *TokenPair
}

func NewMemorySession() *MemorySession {
	return &MemorySession{}
}

func (s *MemorySession) User() (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil, ErrNoSession
	}
	u := *s.user
	return &u, nil
}

func (s *MemorySession) Tokens() (*TokenPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tokens == nil {
		return nil, ErrNoSession
	}
	t := *s.tokens
	return &t, nil
}

func (s *MemorySession) Save(user *User, tokens *TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	s.tokens = tokens
	return nil
}

func (s *MemorySession) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.tokens = nil
	return nil
}

// FileSession persists the session as a JSON document on disk, keyed by
// "user" and "tokens". The file is created with 0600 since it holds
// credentials.
type FileSession struct {
	mu   sync.Mutex
	path string
}

func NewFileSession(path string) *FileSession {
	return &FileSession{path: path}
}

type sessionFile struct {
	User   *User      `json:"user,omitempty"`
	Tokens *TokenPair `json:"tokens,omitempty"`
}

func (s *FileSession) load() (*sessionFile, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &sessionFile{}, nil
		}
		return nil, err
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	var sf sessionFile
	if data, ok := doc[sessionKeyUser]; ok {
		if err := json.Unmarshal(data, &sf.User); err != nil {
			return nil, err
		}
	}
	if data, ok := doc[sessionKeyTokens]; ok {
		if err := json.Unmarshal(data, &sf.Tokens); err != nil {
			return nil, err
		}
	}
	return &sf, nil
}

func (s *FileSession) store(sf *sessionFile) error {
	doc := map[string]any{}
	if sf.User != nil {
		doc[sessionKeyUser] = sf.User
	}
	if sf.Tokens != nil {
		doc[sessionKeyTokens] = sf.Tokens
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, raw, 0o600)
}

func (s *FileSession) User() (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sf, err := s.load()
	if err != nil {
		return nil, err
	}
	if sf.User == nil {
		return nil, ErrNoSession
	}
	return sf.User, nil
}

func (s *FileSession) Tokens() (*TokenPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sf, err := s.load()
	if err != nil {
		return nil, err
	}
	if sf.Tokens == nil {
		return nil, ErrNoSession
	}
	return sf.Tokens, nil
}

func (s *FileSession) Save(user *User, tokens *TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store(&sessionFile{User: user, Tokens: tokens})
}

func (s *FileSession) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
