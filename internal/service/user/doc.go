// Package user implements the user management rules of the admin.
//
// The service validates submitted forms against the user rule set, enforces
// email uniqueness against the repository and maps store failures onto the
// sentinel and typed errors defined here. It never renders HTML.
//
// Repository implementations live in repository/postgres/ and repository/memory/.
package user
