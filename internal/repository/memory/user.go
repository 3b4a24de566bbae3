// Package memory keeps bot users in process memory. It backs the bot when
// the vocabulary lives in a remote spreadsheet and no database is configured.
package memory

import (
	"sync"
	"time"

	"vocabsheet/internal/domain"
)

// UserRepo implements repository.UserRepository in memory
type UserRepo struct {
	mu    sync.RWMutex
	users map[int64]*domain.User
}

// NewUserRepo creates a user repository holding the given users
func NewUserRepo(users ...*domain.User) *UserRepo {
	r := &UserRepo{users: make(map[int64]*domain.User, len(users))}
	for _, u := range users {
		r.users[u.UserID] = u
	}
	return r
}

// IsAuthorized checks if user is authorized
func (r *UserRepo) IsAuthorized(userID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	return ok && u.Authorized, nil
}

// AuthorizeUser marks user as authorized, creating it if needed
func (r *UserRepo) AuthorizeUser(userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		u = &domain.User{UserID: userID, CreatedAt: time.Now()}
		r.users[userID] = u
	}
	u.Authorized = true
	return nil
}

// EnsureUserExists creates user record if doesn't exist
func (r *UserRepo) EnsureUserExists(userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[userID]; !ok {
		r.users[userID] = &domain.User{UserID: userID, CreatedAt: time.Now()}
	}
	return nil
}
