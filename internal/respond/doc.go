// Package respond composes the HTTP response for every admin action.
//
// Each outcome of an action maps to exactly one Descriptor: which template to
// render, which status to send and which signals to attach. Handlers pick a
// constructor; they never assemble status codes or headers themselves.
package respond
