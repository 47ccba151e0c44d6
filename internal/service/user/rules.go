package user

import (
	"github.com/kanna-admin/kanna/internal/domain"
	"github.com/kanna-admin/kanna/internal/validate"
)

const (
	maxNameLength  = 100
	maxEmailLength = 254
)

// Rules returns the rule set applied to create and update submissions.
func Rules() validate.RuleSet {
	return validate.RuleSet{
		{Name: domain.FieldFirstName, Rules: []validate.Rule{
			validate.Required("First name is required."),
			validate.MaxLength(maxNameLength, "First name must be at most 100 characters."),
			validate.PlainText("First name must not contain HTML."),
		}},
		{Name: domain.FieldLastName, Rules: []validate.Rule{
			validate.Required("Last name is required."),
			validate.MaxLength(maxNameLength, "Last name must be at most 100 characters."),
			validate.PlainText("Last name must not contain HTML."),
		}},
		{Name: domain.FieldEmail, Rules: []validate.Rule{
			validate.Required("Email is required."),
			validate.Email("Email address is not valid."),
			validate.MaxLength(maxEmailLength, "Email must be at most 254 characters."),
		}},
	}
}
