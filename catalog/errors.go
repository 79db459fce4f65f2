package catalog

import (
	"fmt"
)

// This error type is returned when a record is requested by ID and the
// catalog reports a client failure.
type NotFoundError struct {
	Kind, Id, URL string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("Unable to get %s '%s' from %s", e.Kind, e.Id, e.URL)
}

// indicates that a list request produced an empty page (distinct from "no
// matches after filtering", which is a valid empty result)
type EmptyCatalogError struct {
	Kind string
}

func (e EmptyCatalogError) Error() string {
	return fmt.Sprintf("No %s items found in the catalog", e.Kind)
}

// this error type is returned when a network call itself cannot complete
type TransportError struct {
	URL, Message string
}

func (e TransportError) Error() string {
	return fmt.Sprintf("Cannot reach %s: %s", e.URL, e.Message)
}

// this error type is emitted if an endpoint redirects an HTTPS request to an
// HTTP endpoint (it's NUTS that this can happen!)
type DowngradedRedirectError struct {
	Endpoint string
}

func (e DowngradedRedirectError) Error() string {
	return fmt.Sprintf("The endpoint %s is attempting to downgrade an HTTPS request to HTTP",
		e.Endpoint)
}
