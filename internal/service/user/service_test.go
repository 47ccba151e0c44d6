package user

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanna-admin/kanna/internal/domain"
	"github.com/kanna-admin/kanna/internal/pkg/distlock"
	"github.com/kanna-admin/kanna/internal/validate"
)

// mockRepo is an in-memory repository for testing.
type mockRepo struct {
	mu        sync.RWMutex
	store     map[string]*domain.User
	createErr error
	raceEmail bool // EmailTaken lies, so Create/Update hit the store-level check
}

func newMockRepo() *mockRepo {
	return &mockRepo{store: make(map[string]*domain.User)}
}

func (m *mockRepo) emailOwner(email string) string {
	for id, u := range m.store {
		if strings.EqualFold(u.Email, email) {
			return id
		}
	}
	return ""
}

func (m *mockRepo) Create(_ context.Context, f domain.UserFields) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return "", m.createErr
	}
	if m.emailOwner(f.Email) != "" {
		return "", NewEmailConflict()
	}
	id := uuid.NewString()
	now := time.Now()
	m.store[id] = &domain.User{ID: id, FirstName: f.FirstName, LastName: f.LastName, Email: f.Email, CreatedAt: now, UpdatedAt: now}
	return id, nil
}

func (m *mockRepo) FetchByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, id string, f domain.UserFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[id]
	if !ok {
		return ErrNotFound
	}
	if owner := m.emailOwner(f.Email); owner != "" && owner != id {
		return NewEmailConflict()
	}
	u.FirstName, u.LastName, u.Email = f.FirstName, f.LastName, f.Email
	u.UpdatedAt = time.Now()
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.store[id]
	delete(m.store, id)
	return ok, nil
}

func (m *mockRepo) ListAll(_ context.Context) ([]domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.User, 0, len(m.store))
	for _, u := range m.store {
		out = append(out, *u)
	}
	return out, nil
}

func (m *mockRepo) EmailTaken(_ context.Context, email, excludeID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.raceEmail {
		return false, nil
	}
	owner := m.emailOwner(email)
	return owner != "" && owner != excludeID, nil
}

func fields(first, last, email string) domain.UserFields {
	return domain.UserFields{FirstName: first, LastName: last, Email: email}
}

func TestService_Create(t *testing.T) {
	svc := NewService(newMockRepo())

	u, err := svc.Create(context.Background(), fields("Ada", "Lovelace", "ada@x.com"))
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "Ada Lovelace", u.FullName())
	assert.False(t, u.CreatedAt.IsZero())
}

func TestService_Create_DuplicateEmailCaseInsensitive(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, fields("Ada", "Lovelace", "ada@x.com"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, fields("Other", "Person", "ADA@x.com"))
	ce, ok := IsConflict(err)
	require.True(t, ok, "expected conflict, got %v", err)
	assert.Equal(t, "email", ce.Field)
	assert.Equal(t, EmailInUseMessage, ce.Message)
}

func TestService_Create_StoreConflictIsAuthoritative(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, fields("Ada", "Lovelace", "ada@x.com"))
	require.NoError(t, err)

	repo.raceEmail = true
	_, err = svc.Create(ctx, fields("Ada", "Again", "ada@x.com"))
	_, ok := IsConflict(err)
	assert.True(t, ok)
}

func TestService_Create_PersistenceError(t *testing.T) {
	repo := newMockRepo()
	repo.createErr = errors.New("connection refused")
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), fields("Ada", "Lovelace", "ada@x.com"))
	require.Error(t, err)
	_, isConflict := IsConflict(err)
	assert.False(t, isConflict)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestService_Update(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, fields("Ada", "Lovelace", "ada@x.com"))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, fields("Ada", "King", "ada@x.com"))
	require.NoError(t, err)
	assert.Equal(t, "King", updated.LastName)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))
}

func TestService_Update_OwnEmailWithDifferentCaseIsAllowed(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, fields("Ada", "Lovelace", "ada@x.com"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, fields("Ada", "Lovelace", "Ada@X.com"))
	assert.NoError(t, err)
}

func TestService_Update_EmailOwnedByAnotherUser(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, fields("Ada", "Lovelace", "ada@x.com"))
	require.NoError(t, err)
	grace, err := svc.Create(ctx, fields("Grace", "Hopper", "grace@x.com"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, grace.ID, fields("Grace", "Hopper", "ada@x.com"))
	_, ok := IsConflict(err)
	assert.True(t, ok)
}

func TestService_Update_Missing(t *testing.T) {
	svc := NewService(newMockRepo())

	_, err := svc.Update(context.Background(), uuid.NewString(), fields("A", "B", "a@b.com"))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Update(context.Background(), "not-a-uuid", fields("A", "B", "a@b.com"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_Get_MalformedID(t *testing.T) {
	svc := NewService(newMockRepo())
	_, err := svc.Get(context.Background(), "42; DROP TABLE users")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_Delete_Idempotent(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	u, err := svc.Create(ctx, fields("Ada", "Lovelace", "ada@x.com"))
	require.NoError(t, err)

	existed, err := svc.Delete(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = svc.Delete(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, existed)

	existed, err = svc.Delete(ctx, "garbage")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestService_Validate(t *testing.T) {
	svc := NewService(newMockRepo())

	out := svc.Validate(validate.RawInput{"first_name": "", "last_name": "Lee", "email": "a@b.com"})
	invalid, ok := out.(validate.Invalid)
	require.True(t, ok)
	assert.Equal(t, validate.Errors{"first_name": {"First name is required."}}, invalid.Errors)

	out = svc.Validate(validate.RawInput{"first_name": "Ann", "last_name": "Lee", "email": "ann@x.com"})
	_, ok = out.(validate.Valid)
	assert.True(t, ok)
}

type stubLock struct{ acquired bool }

func (l stubLock) Acquire(context.Context) (bool, error) { return l.acquired, nil }
func (l stubLock) Release(context.Context) error         { return nil }

func TestService_BusyLockIsNotAConflict(t *testing.T) {
	var keys []string
	svc := NewService(newMockRepo(), WithLockWait(30*time.Millisecond), WithLocker(func(key string) distlock.DistLock {
		keys = append(keys, key)
		return stubLock{acquired: false}
	}))

	u, err := svc.Create(context.Background(), fields("Ada", "Lovelace", " ADA@x.com "))
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.FirstName)
	assert.Equal(t, []string{"user-email:ada@x.com"}, keys)
}

func newLockedService(t *testing.T, wait time.Duration) (*Service, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	svc := NewService(newMockRepo(),
		WithLockWait(wait),
		WithLocker(distlock.Factory(client, time.Minute)),
	)
	return svc, client
}

func TestService_SelfUpdateWhileEmailLockHeld(t *testing.T) {
	svc, client := newLockedService(t, 50*time.Millisecond)
	ctx := context.Background()

	ada, err := svc.Create(ctx, fields("Ada", "Lovelace", "ada@x.com"))
	require.NoError(t, err)

	held := distlock.NewLock(client, "user-email:ada@x.com", time.Minute)
	ok, err := held.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	defer held.Release(ctx)

	u, err := svc.Update(ctx, ada.ID, fields("Ada", "King", "ada@x.com"))
	require.NoError(t, err)
	assert.Equal(t, "King", u.LastName)
}

func TestService_WaitsForEmailLockRelease(t *testing.T) {
	svc, client := newLockedService(t, 5*time.Second)
	ctx := context.Background()

	held := distlock.NewLock(client, "user-email:ada@x.com", time.Minute)
	ok, err := held.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	go func() {
		time.Sleep(50 * time.Millisecond)
		held.Release(context.Background())
	}()

	start := time.Now()
	u, err := svc.Create(ctx, fields("Ada", "Lovelace", "ada@x.com"))
	require.NoError(t, err)
	assert.Equal(t, "ada@x.com", u.Email)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestService_LockWaitHonoursContext(t *testing.T) {
	svc, client := newLockedService(t, 5*time.Second)

	held := distlock.NewLock(client, "user-email:ada@x.com", time.Minute)
	ok, err := held.Acquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err = svc.Create(ctx, fields("Ada", "Lovelace", "ada@x.com"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lock email")
	_, isConflict := IsConflict(err)
	assert.False(t, isConflict)
}

func TestService_Count(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	n, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = svc.Create(ctx, fields("Ada", "Lovelace", "ada@x.com"))
	require.NoError(t, err)

	n, err = svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
