package validate

import (
	"net/url"
	"strings"
)

// RawInput is unvalidated form input keyed by field name. It may contain
// extra fields (ignored) or miss fields (read as the empty string).
type RawInput map[string]string

// FromForm flattens url.Values into RawInput, keeping the first value of
// each key.
func FromForm(form url.Values) RawInput {
	raw := make(RawInput, len(form))
	for k, v := range form {
		if len(v) > 0 {
			raw[k] = v[0]
		}
	}
	return raw
}

// Errors maps a field name to its ordered list of messages. A field is
// present only if at least one rule failed for it.
type Errors map[string][]string

// Add appends msg to field's messages.
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Has reports whether field has at least one message.
func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

// First returns the first message for field, or "".
func (e Errors) First(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Rule checks one trimmed value. Check returns true when the value passes.
type Rule struct {
	Name    string
	Message string
	Check   func(value string) bool
}

// Field binds a field name to its rules, evaluated in order.
type Field struct {
	Name  string
	Rules []Rule
}

// RuleSet is the ordered list of validated fields.
type RuleSet []Field

// Names returns the field names in declaration order.
func (rs RuleSet) Names() []string {
	names := make([]string, len(rs))
	for i, f := range rs {
		names[i] = f.Name
	}
	return names
}

// Outcome is either Valid or Invalid.
type Outcome interface {
	outcome()
}

// Valid carries the trimmed values of every field in the rule set.
type Valid struct {
	Values map[string]string
}

// Invalid carries the per-field messages and the trimmed values the user
// submitted, so a form can be re-rendered with them.
type Invalid struct {
	Values map[string]string
	Errors Errors
}

func (Valid) outcome()   {}
func (Invalid) outcome() {}

// Validate runs every rule of every field and collects all failures.
func Validate(raw RawInput, rules RuleSet) Outcome {
	values := make(map[string]string, len(rules))
	errs := Errors{}

	for _, f := range rules {
		v := strings.TrimSpace(raw[f.Name])
		values[f.Name] = v
		for _, r := range f.Rules {
			if !r.Check(v) {
				errs.Add(f.Name, r.Message)
			}
		}
	}

	if len(errs) > 0 {
		return Invalid{Values: values, Errors: errs}
	}
	return Valid{Values: values}
}
