package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kanna-admin/kanna/internal/domain"
	"github.com/kanna-admin/kanna/internal/pkg/distlock"
	"github.com/kanna-admin/kanna/internal/pkg/logger"
	"github.com/kanna-admin/kanna/internal/validate"
)

// LockTTL bounds how long an email lock is held if the holder dies.
const LockTTL = 5 * time.Second

// LockWait bounds how long a write waits for another writer of the same
// email before it proceeds unlocked.
const LockWait = 2 * time.Second

const lockRetryInterval = 25 * time.Millisecond

// Locker builds a lock for the given key.
type Locker func(key string) distlock.DistLock

// Option configures a Service.
type Option func(*Service)

// WithLocker serializes writes that target the same email address.
func WithLocker(l Locker) Option {
	return func(s *Service) { s.locker = l }
}

// WithLockWait overrides LockWait.
func WithLockWait(d time.Duration) Option {
	return func(s *Service) { s.lockWait = d }
}

// Service implements user business logic. It is safe for concurrent use.
type Service struct {
	repo     Repository
	locker   Locker
	lockWait time.Duration
}

// NewService creates a user service backed by the given repository.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, lockWait: LockWait}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Validate runs the user rule set against a raw submission.
func (s *Service) Validate(raw validate.RawInput) validate.Outcome {
	return validate.Validate(raw, Rules())
}

// Create stores a new user and returns it as persisted.
func (s *Service) Create(ctx context.Context, fields domain.UserFields) (*domain.User, error) {
	release, err := s.lockEmail(ctx, fields.Email)
	if err != nil {
		return nil, err
	}
	defer release()

	taken, err := s.repo.EmailTaken(ctx, fields.Email, "")
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, NewEmailConflict()
	}

	id, err := s.repo.Create(ctx, fields)
	if err != nil {
		return nil, err
	}
	return s.repo.FetchByID(ctx, id)
}

// Update replaces the editable fields of an existing user and returns the
// stored record.
func (s *Service) Update(ctx context.Context, id string, fields domain.UserFields) (*domain.User, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}

	release, err := s.lockEmail(ctx, fields.Email)
	if err != nil {
		return nil, err
	}
	defer release()

	taken, err := s.repo.EmailTaken(ctx, fields.Email, id)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, NewEmailConflict()
	}

	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.repo.FetchByID(ctx, id)
}

// Get returns a single user. Returns ErrNotFound for unknown or malformed ids.
func (s *Service) Get(ctx context.Context, id string) (*domain.User, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	return s.repo.FetchByID(ctx, id)
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	return s.repo.ListAll(ctx)
}

// Count returns the number of users, using the repository's own counter
// when it has one.
func (s *Service) Count(ctx context.Context) (int, error) {
	if c, ok := s.repo.(interface {
		Count(ctx context.Context) (int, error)
	}); ok {
		return c.Count(ctx)
	}
	users, err := s.repo.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	return len(users), nil
}

// Delete removes a user. Deleting a missing user is not an error; the
// returned flag tells whether anything was removed.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	return s.repo.Delete(ctx, id)
}

// lockEmail serializes writers of one email address. A busy lock is retried
// until lockWait passes; after that the write goes ahead unlocked and the
// pre-check plus the store constraint decide. Contention alone is never
// reported as a conflict.
func (s *Service) lockEmail(ctx context.Context, email string) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	lock := s.locker("user-email:" + strings.ToLower(strings.TrimSpace(email)))

	deadline := time.NewTimer(s.lockWait)
	defer deadline.Stop()
	retry := time.NewTicker(lockRetryInterval)
	defer retry.Stop()

	for {
		ok, err := lock.Acquire(ctx)
		if err != nil {
			return nil, fmt.Errorf("lock email: %w", err)
		}
		if ok {
			return func() {
				// Release on a fresh context so a cancelled request still frees the key.
				rctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				_ = lock.Release(rctx)
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("lock email: %w", ctx.Err())
		case <-deadline.C:
			logger.Warn("email lock still busy, writing without it", "email", email, "waited", s.lockWait)
			return func() {}, nil
		case <-retry.C:
		}
	}
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
