package user

import (
	"context"

	"github.com/kanna-admin/kanna/internal/domain"
)

// Repository defines the data access contract for users.
type Repository interface {
	// Create inserts a user and returns the id assigned by the store.
	// A duplicate email yields a *ConflictError.
	Create(ctx context.Context, fields domain.UserFields) (string, error)

	// FetchByID returns ErrNotFound if no user has the id.
	FetchByID(ctx context.Context, id string) (*domain.User, error)

	// Update replaces the editable fields and bumps UpdatedAt. Returns
	// ErrNotFound if the user doesn't exist and *ConflictError on a duplicate email.
	Update(ctx context.Context, id string, fields domain.UserFields) error

	// Delete removes the user and reports whether it existed.
	Delete(ctx context.Context, id string) (bool, error)

	// ListAll returns every user ordered by creation time.
	ListAll(ctx context.Context) ([]domain.User, error)

	// EmailTaken reports whether another user (excluding excludeID) owns the
	// email, compared case-insensitively.
	EmailTaken(ctx context.Context, email, excludeID string) (bool, error)
}
