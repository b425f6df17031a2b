package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

var ErrInvalidSessionID = errors.New("invalid session id")

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Sessions owns one cart per browsing session id. A cart lives until its
// session ends. With a directory, carts are written to <dir>/<id>.json on
// Save so a session can span several processes.
type Sessions struct {
	mu    sync.Mutex
	carts map[string]*Cart
	dir   string
}

// NewSessions keeps carts in memory only
func NewSessions() *Sessions {
	return &Sessions{carts: make(map[string]*Cart)}
}

// NewPersistentSessions keeps carts in dir, creating it if needed
func NewPersistentSessions(dir string) (*Sessions, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	return &Sessions{carts: make(map[string]*Cart), dir: dir}, nil
}

// Get returns the cart of sessionID, creating an empty one on first use.
// A stored cart that cannot be read is replaced by an empty one.
func (s *Sessions) Get(sessionID string) *Cart {
	c, err := s.Open(sessionID)
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		c = New()
		s.carts[sessionID] = c
	}
	return c
}

// Open is Get with load errors reported
func (s *Sessions) Open(sessionID string) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.carts[sessionID]; ok {
		return c, nil
	}

	c := New()
	if s.dir != "" {
		path, err := s.path(sessionID)
		if err != nil {
			return nil, err
		}
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := json.Unmarshal(raw, c); err != nil {
				return nil, fmt.Errorf("failed to decode cart: %w", err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("failed to read cart: %w", err)
		}
	}

	s.carts[sessionID] = c
	return c, nil
}

// Save writes the cart of sessionID. It is a no-op for in-memory sessions.
func (s *Sessions) Save(sessionID string) error {
	s.mu.Lock()
	c, ok := s.carts[sessionID]
	s.mu.Unlock()

	if s.dir == "" || !ok {
		return nil
	}

	path, err := s.path(sessionID)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write cart: %w", err)
	}
	return os.Rename(tmp, path)
}

// End discards the cart of sessionID, including its stored copy
func (s *Sessions) End(sessionID string) error {
	s.mu.Lock()
	delete(s.carts, sessionID)
	s.mu.Unlock()

	if s.dir == "" {
		return nil
	}

	path, err := s.path(sessionID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove cart: %w", err)
	}
	return nil
}

// Len returns the number of live sessions
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts)
}

func (s *Sessions) path(sessionID string) (string, error) {
	if !sessionIDPattern.MatchString(sessionID) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSessionID, sessionID)
	}
	return filepath.Join(s.dir, sessionID+".json"), nil
}
