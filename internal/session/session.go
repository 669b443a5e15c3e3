package session

import (
	"sync"

	"github.com/mtlprog/panchayat/internal/domain"
)

// Session holds at most one authenticated viewer.
type Session struct {
	mu        sync.RWMutex
	directory *Directory
	viewer    *domain.Viewer
}

// New creates a logged-out Session backed by directory.
func New(directory *Directory) *Session {
	return &Session{directory: directory}
}

// Login replaces the current viewer with the one matching creds.
// A failed attempt leaves the session logged out.
func (s *Session) Login(creds Credentials) (domain.Viewer, error) {
	viewer, err := s.directory.Authenticate(creds)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.viewer = nil
		return domain.Viewer{}, err
	}
	s.viewer = &viewer
	return viewer, nil
}

// Logout clears the current viewer.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewer = nil
}

// Viewer returns the current viewer and whether one is logged in.
func (s *Session) Viewer() (domain.Viewer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.viewer == nil {
		return domain.Viewer{}, false
	}
	return *s.viewer, true
}

// Require returns the current viewer or domain.ErrUnauthenticated.
func (s *Session) Require() (domain.Viewer, error) {
	viewer, ok := s.Viewer()
	if !ok {
		return domain.Viewer{}, domain.ErrUnauthenticated
	}
	return viewer, nil
}
