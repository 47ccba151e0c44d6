// Package validate checks raw form input against per-field rules.
//
// Validation never touches the store: rules are pure functions of a single
// trimmed value. Checks that need a round-trip (uniqueness) belong to the
// service layer, which reports them through the same Errors shape.
//
// The result is a closed sum type. Callers switch on it:
//
//	switch o := validate.Validate(raw, rules).(type) {
//	case validate.Invalid:
//		// re-render the form with o.Errors
//	case validate.Valid:
//		// persist o.Values
//	}
package validate
