package collection

import (
	"fmt"
)

// This error type is returned when the requested order field is absent
// from a record's attributes, or the sort directive is unrecognized.
type OrderKeyError struct {
	Order, Sort string
}

func (e OrderKeyError) Error() string {
	return fmt.Sprintf("Order param does not exist in collection: %s, rule: %s",
		e.Order, e.Sort)
}
