package storage

import (
	"errors"
	"time"

	"github.com/scrypster/kindred/pkg/types"
)

var (
	// ErrNotFound indicates that the requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates that the input parameters are invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateEdge indicates that an edge with the same
	// (subject, object, type) triple already exists. It is the store-level
	// surfacing of the uniqueness constraint; callers creating mirrors or
	// inferred edges treat it as "already exists", not a failure.
	ErrDuplicateEdge = errors.New("edge already exists")
)

// EdgeFilter narrows edge list queries. The zero value matches everything.
type EdgeFilter struct {
	// Types restricts results to the given relationship types.
	// Empty means any type.
	Types []types.RelationType

	// Status restricts results to edges with the given status.
	// Empty means any status.
	Status types.EdgeStatus

	// ActiveAt, when non-zero, restricts results to edges active at that
	// instant: end_date null or strictly after it.
	ActiveAt time.Time

	// Initiator restricts results to edges initiated by the given person.
	// Empty means any initiator.
	Initiator string

	// ExcludeInitiator restricts results to edges NOT initiated by the given
	// person. Used for the received-pending view, where the recipient must
	// not be the requester.
	ExcludeInitiator string
}

// EdgeFieldUpdate carries the mutable edge fields for UpdateEdgeFields.
// All fields are overwritten; callers load the edge first and modify what
// they need. This keeps mirror propagation a plain row overwrite with no
// read-modify-write surprises inside the store.
type EdgeFieldUpdate struct {
	Status    types.EdgeStatus
	StartDate *time.Time
	EndDate   *time.Time
	Notes     string
}
