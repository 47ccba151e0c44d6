package logger

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// RedactEmail masks an email address for safe logging.
// "john.doe@example.com" → "jo***@example.com"
// Short local parts (≤2 chars) are fully masked: "ab@example.com" → "***@example.com"
func RedactEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return "***@***"
	}
	if utf8.RuneCountInString(local) > 2 {
		return prefix(local, 2) + "***@" + domain
	}
	return "***@" + domain
}

// RedactName keeps the first letter of a personal name: "Ada" → "A***".
func RedactName(name string) string {
	if name == "" {
		return ""
	}
	return prefix(name, 1) + "***"
}

func prefix(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// redactPIIValue masks val according to what its key names. Values under
// other keys still have embedded email addresses masked.
func redactPIIValue(key, val string) string {
	key = strings.ToLower(key)
	switch {
	case strings.Contains(key, "email"):
		return RedactEmail(val)
	case strings.HasSuffix(key, "_name"):
		return RedactName(val)
	}
	return emailRegex.ReplaceAllStringFunc(val, RedactEmail)
}
