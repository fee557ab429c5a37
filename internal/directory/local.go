// Package directory provides person-directory implementations for the
// kinship engine: a local directory backed by the person store, and a
// remote HTTP client for deployments where identity lives in a separate
// service.
package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/scrypster/kindred/internal/kinship"
	"github.com/scrypster/kindred/internal/storage"
)

// Local implements kinship.Directory against the local person store.
// Current-spouse lookups go through the traversal service so the definition
// of "active spousal edge" lives in exactly one place.
type Local struct {
	people    storage.PersonStore
	traversal *kinship.Traversal
}

// Ensure Local satisfies the directory contract at compile time.
var _ kinship.Directory = (*Local)(nil)

// NewLocal creates a local directory over the given stores.
func NewLocal(people storage.PersonStore, edges storage.EdgeStore) *Local {
	return &Local{
		people:    people,
		traversal: kinship.NewTraversal(edges),
	}
}

// PersonExists reports whether the person is in the people table.
func (d *Local) PersonExists(ctx context.Context, personID string) (bool, error) {
	return d.people.PersonExists(ctx, personID)
}

// CurrentSpouse returns the person's current active spouse or partner ID,
// or "" when there is none.
func (d *Local) CurrentSpouse(ctx context.Context, personID string) (string, error) {
	return d.traversal.CurrentSpouse(ctx, personID)
}

// DisplayName returns the person's display name: full name when set,
// otherwise their email address.
func (d *Local) DisplayName(ctx context.Context, personID string) (string, error) {
	person, err := d.people.GetPerson(ctx, personID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", fmt.Errorf("directory: person %s not found", personID)
		}
		return "", fmt.Errorf("directory: display name for %s: %w", personID, err)
	}
	return person.DisplayName(), nil
}
