// Package storage provides composable storage interfaces for the Kindred
// kinship graph.
//
// The storage layer is deliberately small: an EdgeStore for relationship
// edges and a PersonStore for the people they connect. Consistency rules
// (mirroring, approval, inference) live in internal/kinship; the store only
// enforces the structural invariants it can express as constraints — the
// uniqueness of (subject, object, type) and the reverse-lookup index on
// (object, subject).
package storage

import (
	"context"

	"github.com/scrypster/kindred/pkg/types"
)

// EdgeStore persists directed relationship edges.
//
// All mutation methods are single-shot primitives: they touch exactly the
// rows they name and never cascade. The pairing rules (create the mirror,
// flip both statuses together, delete both sides) are composed on top of
// these primitives by internal/kinship, which keeps mirror maintenance from
// re-entering itself.
type EdgeStore interface {
	// CreateEdge inserts a new edge. Returns ErrDuplicateEdge when an edge
	// with the same (subject, object, type) already exists. The check is
	// backed by a uniqueness constraint, so concurrent creators race safely:
	// the loser sees ErrDuplicateEdge, not a partial write.
	CreateEdge(ctx context.Context, edge *types.Edge) error

	// GetEdge retrieves an edge by ID. Returns ErrNotFound if absent.
	GetEdge(ctx context.Context, id string) (*types.Edge, error)

	// FindEdge retrieves the edge keyed (subject, object, type).
	// Returns ErrNotFound if absent. This is the reverse-lookup primitive
	// used to locate mirrors.
	FindEdge(ctx context.Context, subjectID, objectID string, relType types.RelationType) (*types.Edge, error)

	// UpdateEdgeFields overwrites the dates, notes, and status of the edge
	// with the given ID. It is a direct row update with no side effects.
	// Returns ErrNotFound if the edge does not exist.
	UpdateEdgeFields(ctx context.Context, id string, update EdgeFieldUpdate) error

	// UpdateStatusPair sets the status of two edges inside one transaction,
	// so a concurrent reader never observes one side approved and the other
	// still pending. Returns ErrNotFound if either edge is missing.
	UpdateStatusPair(ctx context.Context, primaryID, mirrorID string, status types.EdgeStatus) error

	// DeleteEdge removes the edge with the given ID. Returns ErrNotFound if
	// the edge is already gone; callers treat that as a no-op success.
	DeleteEdge(ctx context.Context, id string) error

	// ListEdgesFrom returns edges with the given subject, filtered.
	ListEdgesFrom(ctx context.Context, subjectID string, filter EdgeFilter) ([]types.Edge, error)

	// ListEdgesTo returns edges with the given object, filtered. Backed by
	// the (object, subject) index.
	ListEdgesTo(ctx context.Context, objectID string, filter EdgeFilter) ([]types.Edge, error)

	// ListEdgesInvolving returns every edge where the person is subject or
	// object, regardless of status, newest first.
	ListEdgesInvolving(ctx context.Context, personID string) ([]types.Edge, error)

	// Close releases any resources held by the store.
	Close() error
}

// PersonStore persists people.
type PersonStore interface {
	// StorePerson creates or updates a person (upsert semantics on ID).
	StorePerson(ctx context.Context, person *types.Person) error

	// GetPerson retrieves a person by ID. Returns ErrNotFound if absent.
	GetPerson(ctx context.Context, id string) (*types.Person, error)

	// PersonExists reports whether a person with the given ID exists.
	PersonExists(ctx context.Context, id string) (bool, error)

	// ListPeople returns all people ordered by name.
	ListPeople(ctx context.Context) ([]types.Person, error)
}

// Store combines the two interfaces; both backends implement it over a
// single database handle.
type Store interface {
	EdgeStore
	PersonStore
}
