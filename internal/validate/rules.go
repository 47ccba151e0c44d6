package validate

import (
	"html"
	"regexp"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// strictPolicy strips every tag; safe for concurrent use once built.
var strictPolicy = bluemonday.StrictPolicy()

// Required fails on an empty (after trimming) value.
func Required(msg string) Rule {
	return Rule{Name: "required", Message: msg, Check: func(v string) bool {
		return v != ""
	}}
}

// Email fails when a non-empty value is not shaped like an address.
func Email(msg string) Rule {
	return Rule{Name: "email", Message: msg, Check: func(v string) bool {
		return v == "" || emailPattern.MatchString(v)
	}}
}

// MaxLength fails when the value has more than n characters.
func MaxLength(n int, msg string) Rule {
	return Rule{Name: "max_length", Message: msg, Check: func(v string) bool {
		return utf8.RuneCountInString(v) <= n
	}}
}

// PlainText fails when the value contains markup that a strict HTML
// sanitizer would remove.
func PlainText(msg string) Rule {
	return Rule{Name: "plain_text", Message: msg, Check: func(v string) bool {
		if v == "" {
			return true
		}
		return html.UnescapeString(strictPolicy.Sanitize(v)) == v
	}}
}
