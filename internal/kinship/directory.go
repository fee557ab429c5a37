package kinship

import "context"

// Directory is the person-directory collaborator the graph engine consumes.
// Identity and profile storage live outside the engine; this is the minimal
// surface the consistency and inference code needs.
//
// internal/directory provides two implementations: a local one backed by the
// person store, and a remote HTTP client for deployments where identity is a
// separate service.
type Directory interface {
	// PersonExists reports whether the person is known.
	PersonExists(ctx context.Context, personID string) (bool, error)

	// CurrentSpouse returns the ID of the person's current active spousal
	// partner, or "" when there is none. "Active" means an approved spouse
	// or partner edge whose end date is null or in the future.
	CurrentSpouse(ctx context.Context, personID string) (string, error)

	// DisplayName returns a human-readable name for the person. Used for
	// the explanatory notes attached to inferred edges.
	DisplayName(ctx context.Context, personID string) (string, error)
}
