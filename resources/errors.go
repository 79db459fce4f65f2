package resources

import (
	"fmt"
)

// this error type is returned when a mutation is attempted without a
// bearer token (before any network call is made)
type AuthRequiredError struct {
	Operation string
}

func (e AuthRequiredError) Error() string {
	return fmt.Sprintf("An API token is required to %s a catalog resource", e.Operation)
}

// indicates that attributes with a mismatched type tag were passed to a
// typed resource constructor
type ValidationError struct {
	Expected, Got string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("Non %s attributes passed to %s constructor (%s)",
		e.Expected, e.Expected, e.Got)
}

// indicates that a query was attempted against a dataset whose provider
// does not support it
type UnsupportedProviderError struct {
	Provider string
}

func (e UnsupportedProviderError) Error() string {
	return fmt.Sprintf("Unable to perform query on datasets with provider '%s'", e.Provider)
}
