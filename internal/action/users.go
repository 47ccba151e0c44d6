package action

import (
	"context"
	"fmt"

	"github.com/kanna-admin/kanna/internal/domain"
	"github.com/kanna-admin/kanna/internal/pkg/logger"
	"github.com/kanna-admin/kanna/internal/respond"
	"github.com/kanna-admin/kanna/internal/service/user"
	"github.com/kanna-admin/kanna/internal/validate"
)

// Handler is the signature shared by every action.
type Handler func(ctx context.Context, req Request) (respond.Descriptor, error)

// Users implements the user actions on top of the user service.
type Users struct {
	svc *user.Service
}

// NewUsers creates the user action handlers.
func NewUsers(svc *user.Service) *Users {
	return &Users{svc: svc}
}

// Create validates the submission and inserts a new user.
func (h *Users) Create(ctx context.Context, req Request) (respond.Descriptor, error) {
	switch out := h.svc.Validate(req.Form()).(type) {
	case validate.Invalid:
		return respond.CreateFormInvalid(out.Values, out.Errors), nil

	case validate.Valid:
		u, err := h.svc.Create(ctx, domain.UserFieldsFromMap(out.Values))
		if ce, ok := user.IsConflict(err); ok {
			return respond.CreateFormInvalid(out.Values, conflictErrors(ce)), nil
		}
		if err != nil {
			return respond.Descriptor{}, fmt.Errorf("create user: %w", err)
		}
		logger.Info("user created", "user_id", u.ID, "email", u.Email)
		return respond.UserCreated(*u), nil

	default:
		return respond.Descriptor{}, fmt.Errorf("create user: unexpected outcome %T", out)
	}
}

// Update replaces the fields of an existing user.
func (h *Users) Update(ctx context.Context, req Request) (respond.Descriptor, error) {
	id := req.Param("id")

	switch out := h.svc.Validate(req.Form()).(type) {
	case validate.Invalid:
		stored, err := h.svc.Get(ctx, id)
		if err != nil {
			return respond.Descriptor{}, fmt.Errorf("update user %s: %w", id, err)
		}
		return respond.EditFormInvalid(*stored, out.Values, out.Errors), nil

	case validate.Valid:
		u, err := h.svc.Update(ctx, id, domain.UserFieldsFromMap(out.Values))
		if ce, ok := user.IsConflict(err); ok {
			stored, gerr := h.svc.Get(ctx, id)
			if gerr != nil {
				return respond.Descriptor{}, fmt.Errorf("update user %s: %w", id, gerr)
			}
			return respond.EditFormInvalid(*stored, out.Values, conflictErrors(ce)), nil
		}
		if err != nil {
			return respond.Descriptor{}, fmt.Errorf("update user %s: %w", id, err)
		}
		logger.Info("user updated", "user_id", u.ID)
		return respond.UserUpdated(*u), nil

	default:
		return respond.Descriptor{}, fmt.Errorf("update user: unexpected outcome %T", out)
	}
}

// Delete removes a user. A missing user is treated as already deleted.
func (h *Users) Delete(ctx context.Context, req Request) (respond.Descriptor, error) {
	id := req.Param("id")
	existed, err := h.svc.Delete(ctx, id)
	if err != nil {
		return respond.Descriptor{}, fmt.Errorf("delete user %s: %w", id, err)
	}
	if existed {
		logger.Info("user deleted", "user_id", id)
	} else {
		logger.Debug("delete of missing user", "user_id", id)
	}
	return respond.UserDeleted(req.Header(HeaderDeleteContext) == DeleteContextEditPage), nil
}

// List renders the full users page.
func (h *Users) List(ctx context.Context, _ Request) (respond.Descriptor, error) {
	users, err := h.svc.List(ctx)
	if err != nil {
		return respond.Descriptor{}, fmt.Errorf("list users: %w", err)
	}
	return respond.UserListPage(users), nil
}

// ListFragment renders only the table body.
func (h *Users) ListFragment(ctx context.Context, _ Request) (respond.Descriptor, error) {
	users, err := h.svc.List(ctx)
	if err != nil {
		return respond.Descriptor{}, fmt.Errorf("list users: %w", err)
	}
	return respond.UserTableBody(users), nil
}

// ReadOne renders the edit page of one user.
func (h *Users) ReadOne(ctx context.Context, req Request) (respond.Descriptor, error) {
	id := req.Param("id")
	u, err := h.svc.Get(ctx, id)
	if err != nil {
		return respond.Descriptor{}, fmt.Errorf("read user %s: %w", id, err)
	}
	return respond.UserReadPage(*u), nil
}

// CreateForm renders the empty create modal.
func (h *Users) CreateForm(_ context.Context, _ Request) (respond.Descriptor, error) {
	return respond.CreateForm(), nil
}

// Dashboard renders the landing page.
func (h *Users) Dashboard(ctx context.Context, _ Request) (respond.Descriptor, error) {
	n, err := h.svc.Count(ctx)
	if err != nil {
		return respond.Descriptor{}, fmt.Errorf("count users: %w", err)
	}
	return respond.Dashboard(n), nil
}

// Run invokes h and turns a terminal error into a failure descriptor. The
// error is returned as well so the caller can log it.
func Run(ctx context.Context, h Handler, req Request) (respond.Descriptor, error) {
	d, err := h(ctx, req)
	if err == nil {
		return d, nil
	}
	return respond.Failure(err, req.HTMX()), err
}

func conflictErrors(ce *user.ConflictError) validate.Errors {
	errs := validate.Errors{}
	errs.Add(ce.Field, ce.Message)
	return errs
}
