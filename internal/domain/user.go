package domain

import (
	"strings"
	"time"
)

// Form field names shared by the validator, the templates and the
// repositories' constraint mapping.
const (
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
	FieldEmail     = "email"
)

// User is an admin-managed account. ID and both timestamps are assigned by
// the store; CreatedAt never changes after insert and UpdatedAt is bumped on
// every successful update.
type User struct {
	ID        string    `json:"id" db:"id"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// UserFields is the client-editable part of a User. Create and Update both
// carry a complete UserFields value; there is no partial patch.
type UserFields struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Fields returns the editable fields of u.
func (u User) Fields() UserFields {
	return UserFields{FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
}

// FullName joins first and last name, skipping empty parts.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UserFieldsFromMap builds UserFields from a field-name keyed map such as
// validated form values. Unknown keys are ignored.
func UserFieldsFromMap(m map[string]string) UserFields {
	return UserFields{
		FirstName: m[FieldFirstName],
		LastName:  m[FieldLastName],
		Email:     m[FieldEmail],
	}
}

// Map returns the fields keyed by form field name.
func (f UserFields) Map() map[string]string {
	return map[string]string{
		FieldFirstName: f.FirstName,
		FieldLastName:  f.LastName,
		FieldEmail:     f.Email,
	}
}
