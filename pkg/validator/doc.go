// Package validator provides composable input rules for the kiosk's local checks.
//
// A Rule pairs a check with the ValidationError reported when it fails; Apply
// runs a set of rules and returns ValidationErrors listing every failure, or
// nil. Rules never touch the network, so callers run them before any request
// is built.
//
//	if err := validator.Apply(
//	    validator.Required("purpose", purpose),
//	    validator.MaxLen("purpose", purpose, 255),
//	); err != nil {
//	    return err
//	}
package validator
