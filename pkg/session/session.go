// Package session persists the signed-in user's bearer token on disk and
// serves it to the API client.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/ayuuto/ayuuto-cli/pkg/clients/ayuutoclient"
	"github.com/ayuuto/ayuuto-cli/pkg/core/model"
)

const (
	sessionFilePerms = 0600 // Read/write for owner only
	sessionDirPerms  = 0700
)

// record is the on-disk form of a session
type record struct {
	Token   string     `json:"token"`
	User    model.User `json:"user"`
	SavedAt time.Time  `json:"savedAt"`
}

// Store keeps one session per environment. It implements
// oauth2.TokenSource so it can be handed straight to the API client.
type Store struct {
	path string
	now  func() time.Time

	mu     sync.Mutex
	cached *record
	loaded bool
}

var _ oauth2.TokenSource = (*Store)(nil)

// NewStore creates a store that keeps its file in dir
func NewStore(dir, env string) *Store {
	name := "session.json"
	if env != "" {
		name = fmt.Sprintf("session-%s.json", env)
	}
	return &Store{
		path: filepath.Join(dir, name),
		now:  time.Now,
	}
}

// Path returns the session file location
func (s *Store) Path() string {
	return s.path
}

// Save persists a new session, replacing any previous one
func (s *Store) Save(sess model.Session) error {
	if sess.Token == "" {
		return fmt.Errorf("cannot save a session without a token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), sessionDirPerms); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	rec := &record{Token: sess.Token, User: sess.User, SavedAt: s.now().UTC()}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(s.path, data, sessionFilePerms); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	s.cached = rec
	s.loaded = true
	return nil
}

// Load returns the stored session, or nil if there is none
func (s *Store) Load() (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.loadLocked()
	if err != nil || rec == nil {
		return nil, err
	}
	return &model.Session{Token: rec.Token, User: rec.User}, nil
}

func (s *Store) loadLocked() (*record, error) {
	if s.loaded {
		return s.cached, nil
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.loaded = true
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}

	s.cached = &rec
	s.loaded = true
	return s.cached, nil
}

// Clear removes the stored session
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cached = nil
	s.loaded = true
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

// User returns the signed-in user, if any
func (s *Store) User() (model.User, bool) {
	sess, err := s.Load()
	if err != nil || sess == nil {
		return model.User{}, false
	}
	return sess.User, true
}

// Token implements oauth2.TokenSource. It fails with ErrNotLoggedIn when
// there is no session and ErrSessionExpired when the token's exp claim
// has passed.
func (s *Store) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	rec, err := s.loadLocked()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.Token == "" {
		return nil, ayuutoclient.ErrNotLoggedIn
	}

	tok := &oauth2.Token{AccessToken: rec.Token, TokenType: "Bearer"}
	if exp, ok := ExpiresAt(rec.Token); ok {
		if !exp.After(s.now()) {
			return nil, ayuutoclient.ErrSessionExpired
		}
		tok.Expiry = exp
	}
	return tok, nil
}

// ExpiresAt reads the exp claim of a JWT without verifying its signature;
// only the backend can verify it. ok is false for opaque tokens or tokens
// without exp.
func ExpiresAt(token string) (time.Time, bool) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
