// Package httputil holds the response writers shared by the HTML and JSON
// handlers, so content types and error bodies stay uniform.
package httputil
