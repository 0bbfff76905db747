package service

// In-memory store fakes backing the service tests.  They mirror the
// SQL repositories' semantics, including the conditional used-flag
// update that enforces single redemption.

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/auth-session-service/internal/model"
	"github.com/iliyamo/auth-session-service/internal/repository"
)

type memUserStore struct {
	mu     sync.Mutex
	nextID uint64
	users  map[uint64]model.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: map[uint64]model.User{}}
}

func (s *memUserStore) Create(_ context.Context, u model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return model.User{}, repository.ErrEmailExists
		}
	}
	s.nextID++
	u.ID = s.nextID
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = u
	return u, nil
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (s *memUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

// setActive flips the account flag directly, simulating an admin
// deactivation.
func (s *memUserStore) setActive(id uint64, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[id]
	u.IsActive = active
	s.users[id] = u
}

type memSessionStore struct {
	mu       sync.Mutex
	nextID   uint64
	sessions map[uint64]model.Session
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: map[uint64]model.Session{}}
}

func (s *memSessionStore) Create(_ context.Context, userID uint64, ip, userAgent string, deviceID *string, expiresAt time.Time) (model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	now := time.Now().UTC()
	sess := model.Session{
		ID:         s.nextID,
		UserID:     userID,
		IPAddress:  ip,
		UserAgent:  userAgent,
		DeviceID:   deviceID,
		IsActive:   true,
		CreatedAt:  now,
		LastUsedAt: now,
		ExpiresAt:  expiresAt,
	}
	s.sessions[sess.ID] = sess
	return sess, nil
}

func (s *memSessionStore) ListActive(_ context.Context, userID uint64, now time.Time) ([]model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Session
	for _, sess := range s.sessions {
		if sess.UserID == userID && sess.IsActive && sess.ExpiresAt.After(now) {
			out = append(out, sess)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastUsedAt.After(out[j].LastUsedAt) })
	return out, nil
}

func (s *memSessionStore) Touch(_ context.Context, sessionID uint64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return repository.ErrNotFound
	}
	sess.LastUsedAt = now
	s.sessions[sessionID] = sess
	return nil
}

func (s *memSessionStore) Terminate(_ context.Context, sessionID, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return repository.ErrNotFound
	}
	if sess.UserID != userID {
		return repository.ErrForbidden
	}
	sess.IsActive = false
	s.sessions[sessionID] = sess
	return nil
}

func (s *memSessionStore) TerminateAll(_ context.Context, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.UserID == userID {
			sess.IsActive = false
			s.sessions[id] = sess
		}
	}
	return nil
}

type memTokenStore struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]model.RefreshToken
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{rows: map[uint64]model.RefreshToken{}}
}

func (s *memTokenStore) Store(_ context.Context, userID uint64, raw, tokenHash string, sessionID *uint64, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.rows[s.nextID] = model.RefreshToken{
		ID:        s.nextID,
		UserID:    userID,
		SessionID: sessionID,
		Token:     raw,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

func (s *memTokenStore) FindActive(_ context.Context, userID uint64, now time.Time) (model.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var best model.RefreshToken
	found := false
	for _, t := range s.rows {
		if t.UserID != userID || t.IsUsed || !t.ExpiresAt.After(now) {
			continue
		}
		if !found || t.ID > best.ID {
			best = t
			found = true
		}
	}
	if !found {
		return model.RefreshToken{}, repository.ErrNotFound
	}
	return best, nil
}

func (s *memTokenStore) MarkUsed(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.rows[id]
	if !ok || t.IsUsed {
		return repository.ErrTokenUsed
	}
	t.IsUsed = true
	s.rows[id] = t
	return nil
}

func (s *memTokenStore) InvalidateForUser(_ context.Context, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.rows {
		if t.UserID == userID && !t.IsUsed {
			t.IsUsed = true
			s.rows[id] = t
		}
	}
	return nil
}

func (s *memTokenStore) InvalidateForSession(_ context.Context, sessionID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.rows {
		if t.SessionID != nil && *t.SessionID == sessionID && !t.IsUsed {
			t.IsUsed = true
			s.rows[id] = t
		}
	}
	return nil
}

func (s *memTokenStore) DeleteRaw(_ context.Context, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.rows {
		if t.Token == raw {
			delete(s.rows, id)
		}
	}
	return nil
}

func (s *memTokenStore) countRows() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
