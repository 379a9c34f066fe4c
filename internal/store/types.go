package store

import (
	"errors"

	"maintenance-logbook-backend/internal/model"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a unique field is already taken.
var ErrDuplicate = errors.New("duplicate record")

// ComplaintFilter narrows a complaint listing. Zero values match everything.
type ComplaintFilter struct {
	Status   model.Status
	Category model.Category
	Resident string
}

// MutateFunc changes a loaded complaint in place. Returning an error aborts the
// write and nothing is persisted.
type MutateFunc func(c *model.Complaint) error
