// Package memory holds in-process repository implementations used when no
// database is configured and in tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kanna-admin/kanna/internal/domain"
	"github.com/kanna-admin/kanna/internal/service/user"
)

// UserRepo implements user.Repository in memory. It is safe for concurrent use.
type UserRepo struct {
	mu    sync.RWMutex
	users map[string]*domain.User
	seq   map[string]int
	next  int
	now   func() time.Time
}

// UserOption configures a UserRepo.
type UserOption func(*UserRepo)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) UserOption {
	return func(r *UserRepo) { r.now = now }
}

// NewUserRepo creates an empty in-memory user repository.
func NewUserRepo(opts ...UserOption) *UserRepo {
	r := &UserRepo{
		users: make(map[string]*domain.User),
		seq:   make(map[string]int),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *UserRepo) Create(_ context.Context, f domain.UserFields) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ownerOf(f.Email) != "" {
		return "", user.NewEmailConflict()
	}
	id := uuid.NewString()
	now := r.now()
	r.users[id] = &domain.User{
		ID:        id,
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Email:     f.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.seq[id] = r.next
	r.next++
	return id, nil
}

func (r *UserRepo) FetchByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepo) Update(_ context.Context, id string, f domain.UserFields) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return user.ErrNotFound
	}
	if owner := r.ownerOf(f.Email); owner != "" && owner != id {
		return user.NewEmailConflict()
	}
	u.FirstName = f.FirstName
	u.LastName = f.LastName
	u.Email = f.Email
	now := r.now()
	if now.Before(u.CreatedAt) {
		now = u.CreatedAt
	}
	u.UpdatedAt = now
	return nil
}

func (r *UserRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return false, nil
	}
	delete(r.users, id)
	delete(r.seq, id)
	return true, nil
}

// ListAll returns users in insertion order.
func (r *UserRepo) ListAll(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return r.seq[out[i].ID] < r.seq[out[j].ID] })
	return out, nil
}

func (r *UserRepo) EmailTaken(_ context.Context, email, excludeID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	owner := r.ownerOf(email)
	return owner != "" && owner != excludeID, nil
}

// ownerOf must be called with r.mu held.
func (r *UserRepo) ownerOf(email string) string {
	email = strings.TrimSpace(email)
	for id, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return id
		}
	}
	return ""
}

// Count returns the number of stored users.
func (r *UserRepo) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users), nil
}
