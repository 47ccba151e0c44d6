package respond

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/kanna-admin/kanna/internal/domain"
	"github.com/kanna-admin/kanna/internal/service/user"
	"github.com/kanna-admin/kanna/internal/signal"
	"github.com/kanna-admin/kanna/internal/validate"
)

// Routes the templates link to.
const (
	DashboardURL    = "/admin"
	ListURL         = "/users/list"
	ListFragmentURL = "/users"
	CreateURL       = "/users/create"
	UsersURL        = "/users"
)

// Flash messages attached on success.
const (
	MsgCreated = "User created."
	MsgUpdated = "User updated."
	MsgDeleted = "User deleted."
)

const (
	msgNotFound    = "The requested user could not be found."
	msgServerError = "An unexpected error occurred. Please try again later."
	timeLayout     = "02 Jan 2006, 15:04"
)

var formFields = []struct {
	name, label, kind string
}{
	{domain.FieldFirstName, "First name", "text"},
	{domain.FieldLastName, "Last name", "text"},
	{domain.FieldEmail, "Email", "email"},
}

// CreateForm is the empty create modal.
func CreateForm() Descriptor {
	return Descriptor{
		Fragment: TemplateCreateForm,
		Status:   http.StatusOK,
		Data:     createFormData(nil, nil),
	}
}

// CreateFormInvalid re-renders the create modal with the submitted values
// and the field errors. No signals, so the modal stays open.
func CreateFormInvalid(values map[string]string, errs validate.Errors) Descriptor {
	return Descriptor{
		Fragment: TemplateCreateForm,
		Status:   http.StatusUnprocessableEntity,
		Data:     createFormData(values, errs),
	}
}

// UserCreated renders the new table row and closes the modal.
func UserCreated(u domain.User) Descriptor {
	return Descriptor{
		Fragment: TemplateUserRow,
		Status:   http.StatusCreated,
		Data:     map[string]any{"user": userData(u)},
		Signals:  []signal.Signal{signal.Success(MsgCreated), signal.Close()},
	}
}

// EditFormInvalid re-renders the edit form with the submitted values. stored
// supplies the id and timestamps.
func EditFormInvalid(stored domain.User, values map[string]string, errs validate.Errors) Descriptor {
	return Descriptor{
		Fragment: TemplateEditForm,
		Status:   http.StatusUnprocessableEntity,
		Data:     editFormData(stored, values, errs),
	}
}

// UserUpdated re-renders the edit form with the stored record.
func UserUpdated(u domain.User) Descriptor {
	return Descriptor{
		Fragment: TemplateEditForm,
		Status:   http.StatusOK,
		Data:     editFormData(u, u.Fields().Map(), nil),
		Signals:  []signal.Signal{signal.Success(MsgUpdated)},
	}
}

// UserDeleted is an empty body with a flash. From the edit page the client
// is sent back to the list.
func UserDeleted(fromEditPage bool) Descriptor {
	d := Descriptor{
		Status:  http.StatusOK,
		Signals: []signal.Signal{signal.Success(MsgDeleted)},
	}
	if fromEditPage {
		d.Redirect = ListURL
	}
	return d
}

// UserListPage is the full users page.
func UserListPage(users []domain.User) Descriptor {
	return Descriptor{
		Fragment: TemplateUserList,
		Page:     true,
		Title:    "Users",
		Nav:      "users",
		Status:   http.StatusOK,
		Data: map[string]any{
			"rows":              rowsData(users),
			"create_url":        CreateURL,
			"list_fragment_url": ListFragmentURL,
		},
	}
}

// UserTableBody is the tbody content for HTMX refreshes.
func UserTableBody(users []domain.User) Descriptor {
	return Descriptor{
		Fragment: TemplateTableBody,
		Status:   http.StatusOK,
		Data:     map[string]any{"rows": rowsData(users)},
	}
}

// UserReadPage is the full edit page of one user.
func UserReadPage(u domain.User) Descriptor {
	return Descriptor{
		Fragment: TemplateUserRead,
		Page:     true,
		Title:    u.FullName(),
		Nav:      "users",
		Status:   http.StatusOK,
		Data:     map[string]any{"form": editFormData(u, u.Fields().Map(), nil)},
	}
}

// Dashboard is the admin landing page.
func Dashboard(userCount int) Descriptor {
	return Descriptor{
		Fragment: TemplateDashboard,
		Page:     true,
		Title:    "Dashboard",
		Nav:      "dashboard",
		Status:   http.StatusOK,
		Data: map[string]any{
			"user_count": userCount,
			"list_url":   ListURL,
		},
	}
}

// NotFound renders the not-found fragment, wrapped in the layout unless the
// request came from HTMX.
func NotFound(htmx bool) Descriptor {
	return Descriptor{
		Fragment: TemplateNotFound,
		Page:     !htmx,
		Title:    "Not found",
		Status:   http.StatusNotFound,
		Data:     map[string]any{"message": msgNotFound},
	}
}

// ServerError carries a generic message only; the cause is logged elsewhere.
func ServerError(htmx bool) Descriptor {
	return Descriptor{
		Fragment: TemplateServerError,
		Page:     !htmx,
		Title:    "Error",
		Status:   http.StatusInternalServerError,
		Data:     map[string]any{"message": msgServerError},
	}
}

// Failure maps a terminal action error onto NotFound or ServerError.
func Failure(err error, htmx bool) Descriptor {
	if errors.Is(err, user.ErrNotFound) {
		return NotFound(htmx)
	}
	return ServerError(htmx)
}

// UserURL is the resource URL of one user.
func UserURL(id string) string {
	return UsersURL + "/" + url.PathEscape(id)
}

func userData(u domain.User) map[string]any {
	link := UserURL(u.ID)
	return map[string]any{
		"id":         u.ID,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"email":      u.Email,
		"full_name":  u.FullName(),
		"created_at": formatTime(u.CreatedAt),
		"updated_at": formatTime(u.UpdatedAt),
		"read_url":   link,
		"update_url": link,
		"delete_url": link,
	}
}

func rowsData(users []domain.User) []map[string]any {
	rows := make([]map[string]any, 0, len(users))
	for _, u := range users {
		rows = append(rows, map[string]any{"user": userData(u)})
	}
	return rows
}

func fieldsData(values map[string]string, errs validate.Errors) []map[string]any {
	out := make([]map[string]any, 0, len(formFields))
	for _, f := range formFields {
		field := map[string]any{
			"name":  f.name,
			"label": f.label,
			"type":  f.kind,
			"value": values[f.name],
		}
		// Liquid treats "" as truthy, so the key is only set when there is a message.
		if msg := errs.First(f.name); msg != "" {
			field["error"] = msg
		}
		out = append(out, field)
	}
	return out
}

func createFormData(values map[string]string, errs validate.Errors) map[string]any {
	return map[string]any{
		"action_url": UsersURL,
		"fields":     fieldsData(values, errs),
	}
}

func editFormData(u domain.User, values map[string]string, errs validate.Errors) map[string]any {
	return map[string]any{
		"user":     userData(u),
		"fields":   fieldsData(values, errs),
		"list_url": ListURL,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(timeLayout)
}
