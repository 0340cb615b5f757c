package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/charlesng35/signupd/internal/models"
)

// MemoryUserStore is a thread-safe in-memory UserStore. It honours the same
// contract as the gorm implementation, including atomic rejection of
// duplicate emails, which makes it a faithful double in engine tests.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]*models.User // keyed by email (case-sensitive)
}

// NewMemoryUserStore returns an empty in-memory user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]*models.User)}
}

func (s *MemoryUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.Email]; exists {
		return ErrDuplicateEmail
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	cpy := *user
	s.users[user.Email] = &cpy
	return nil
}

func (s *MemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[email]
	if !ok {
		return nil, ErrNotFound
	}

	cpy := *user
	return &cpy, nil
}

func (s *MemoryUserStore) UpdateStatus(_ context.Context, userID string, status models.UserStatus, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.ID == userID {
			user.Status = status
			stamp := at
			user.UpdatedAt = &stamp
			return nil
		}
	}
	return ErrNotFound
}

// Count reports the number of stored users.
func (s *MemoryUserStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

type tokenKey struct {
	userID string
	code   string
}

// MemoryTokenStore is a thread-safe in-memory TokenStore.
type MemoryTokenStore struct {
	mu     sync.RWMutex
	tokens map[tokenKey]*models.ActivationToken
}

// NewMemoryTokenStore returns an empty in-memory token store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[tokenKey]*models.ActivationToken)}
}

func (s *MemoryTokenStore) Create(_ context.Context, token *models.ActivationToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cpy := *token
	s.tokens[tokenKey{userID: token.UserID, code: token.Code}] = &cpy
	return nil
}

func (s *MemoryTokenStore) Find(_ context.Context, userID, code string) (*models.ActivationToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, ok := s.tokens[tokenKey{userID: userID, code: code}]
	if !ok {
		return nil, ErrNotFound
	}

	cpy := *token
	return &cpy, nil
}

func (s *MemoryTokenStore) DeleteByUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.tokens {
		if key.userID == userID {
			delete(s.tokens, key)
		}
	}
	return nil
}

func (s *MemoryTokenStore) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for key, token := range s.tokens {
		if token.CreatedAt.Before(before) {
			delete(s.tokens, key)
			removed++
		}
	}
	return removed, nil
}

// Count reports the number of stored tokens.
func (s *MemoryTokenStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}
