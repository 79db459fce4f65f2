package journal

import (
	"fmt"

	"github.com/google/uuid"
)

// indicates that the journal hasn't been opened with Init
type NotOpenError struct{}

func (e NotOpenError) Error() string {
	return "The mutation journal is not open"
}

// indicates that the journal's database file could not be opened
type CantOpenError struct {
	Message string
}

func (e CantOpenError) Error() string {
	return fmt.Sprintf("The mutation journal couldn't be opened: %s", e.Message)
}

// indicates that the journal's database file could not be closed
type CantCloseError struct {
	Message string
}

func (e CantCloseError) Error() string {
	return fmt.Sprintf("The mutation journal couldn't be closed: %s", e.Message)
}

// indicates trouble with a record passed to RecordMutation
type NewRecordError struct {
	Id      uuid.UUID
	Message string
}

func (e NewRecordError) Error() string {
	return fmt.Sprintf("Couldn't journal mutation %s: %s", e.Id.String(), e.Message)
}
