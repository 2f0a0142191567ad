package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session holds one user's pending selection.
type Session struct {
	ID string

	mu       sync.RWMutex
	images   []Input
	logo     *Logo
	lastUsed time.Time
	now      func() time.Time
}

func NewSession(id string) *Session {
	s := &Session{ID: id, now: time.Now}
	s.lastUsed = s.now()
	return s
}

// SetImages replaces the entire pending image list.
func (s *Session) SetImages(images []Input) {
	cp := make([]Input, len(images))
	copy(cp, images)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = cp
	s.lastUsed = s.now()
}

// SetLogo decodes in and makes it the current logo. On a decode error the
// previous logo is kept.
func (s *Session) SetLogo(in Input) error {
	logo, err := NewLogo(in)
	if err != nil {
		return err
	}
	s.SetDecodedLogo(logo)
	return nil
}

// SetDecodedLogo replaces the current logo with an already decoded one.
func (s *Session) SetDecodedLogo(logo *Logo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logo = logo
	s.lastUsed = s.now()
}

func (s *Session) ClearLogo() {
	s.SetDecodedLogo(nil)
}

// Snapshot returns the current selection. The returned slice is not shared
// with the session.
func (s *Session) Snapshot() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = s.now()

	images := make([]Input, len(s.images))
	copy(images, s.images)
	return Selection{Images: images, Logo: s.logo}
}

func (s *Session) LastUsed() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUsed
}

// Store keeps sessions in memory. Nothing is persisted.
type Store struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewStore returns a store evicting sessions idle for longer than ttl.
// A zero ttl disables eviction.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

func (st *Store) Create() (*Session, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("session id: %w", err)
	}
	s := NewSession(id.String())
	s.now = st.now
	s.lastUsed = st.now()

	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID] = s
	return s, nil
}

func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	return s, ok
}

func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	_, ok := st.sessions[id]
	delete(st.sessions, id)
	return ok
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep evicts idle sessions and returns how many were removed.
func (st *Store) Sweep() int {
	if st.ttl <= 0 {
		return 0
	}
	cutoff := st.now().Add(-st.ttl)

	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for id, s := range st.sessions {
		if s.LastUsed().Before(cutoff) {
			delete(st.sessions, id)
			n++
		}
	}
	return n
}

// RunSweeper calls Sweep every interval until ctx is done.
func (st *Store) RunSweeper(ctx context.Context, interval time.Duration) {
	if st.ttl <= 0 || interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			st.Sweep()
		}
	}
}
