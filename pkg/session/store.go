// Package session acquires, validates, persists and restores the
// authenticated browser session.
package session

import (
	"errors"
	"os"
	"sync"
	"time"

	"github.com/devicelab-dev/reel-publisher/pkg/core"
	"github.com/devicelab-dev/reel-publisher/pkg/fsutil"
)

// Session is a persisted set of cookies.
type Session struct {
	Cookies []core.Cookie `json:"cookies"`
	Origin  string        `json:"origin,omitempty"` // Site the cookies were captured from
	SavedAt time.Time     `json:"savedAt"`
}

// Domains returns the distinct cookie domains in first-seen order.
func (s *Session) Domains() []string {
	seen := make(map[string]bool)
	var domains []string
	for _, c := range s.Cookies {
		if !seen[c.Domain] {
			seen[c.Domain] = true
			domains = append(domains, c.Domain)
		}
	}
	return domains
}

// Store persists a Session.
type Store interface {
	// Load returns the persisted session, or nil without error when none exists.
	Load() (*Session, error)
	Save(s *Session) error
	// Clear removes the persisted session. Clearing an empty store is not an error.
	Clear() error
}

// FileStore keeps the session as a JSON file.
// Concurrent writers are not coordinated.
type FileStore struct {
	Path string
}

// NewFileStore creates a FileStore at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads the session file.
func (f *FileStore) Load() (*Session, error) {
	var s Session
	if err := fsutil.ReadJSON(f.Path, &s); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, core.ErrStorage.WithMessage("cannot read session " + f.Path).WithCause(err)
	}
	return &s, nil
}

// Save writes the session file atomically with owner-only permissions.
func (f *FileStore) Save(s *Session) error {
	if s == nil {
		return core.ErrStorage.WithMessage("nil session")
	}
	if err := fsutil.WriteJSONAtomic(f.Path, s, 0o600); err != nil {
		return core.ErrStorage.WithMessage("cannot write session " + f.Path).WithCause(err)
	}
	return nil
}

// Clear deletes the session file.
func (f *FileStore) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return core.ErrStorage.WithMessage("cannot remove session " + f.Path).WithCause(err)
	}
	return nil
}

// MemoryStore keeps the session in memory.
type MemoryStore struct {
	mu      sync.Mutex
	session *Session
	saves   int

	// LoadErr and SaveErr inject failures.
	LoadErr error
	SaveErr error
}

// NewMemoryStore creates a MemoryStore holding s, which may be nil.
func NewMemoryStore(s *Session) *MemoryStore {
	return &MemoryStore{session: s}
}

// Load returns a copy of the stored session.
func (m *MemoryStore) Load() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, core.ErrStorage.WithCause(m.LoadErr)
	}
	if m.session == nil {
		return nil, nil
	}
	cp := *m.session
	cp.Cookies = append([]core.Cookie(nil), m.session.Cookies...)
	return &cp, nil
}

// Save stores a copy of s.
func (m *MemoryStore) Save(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return core.ErrStorage.WithCause(m.SaveErr)
	}
	cp := *s
	cp.Cookies = append([]core.Cookie(nil), s.Cookies...)
	m.session = &cp
	m.saves++
	return nil
}

// Clear drops the stored session.
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}

// Saves returns how many times Save succeeded.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
