// Package kinship implements the consistency and inference engine for the
// Kindred relationship graph.
//
// Every stored edge has a mirror edge in the opposite direction with the
// reciprocal type; the pair is created, updated, and destroyed together.
// Status changes run through a two-party approval workflow applied atomically
// to both sides. Declaring a parent derives step-parent and sibling edges
// under specific conditions. Read-side traversal queries live in Traversal.
package kinship

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/scrypster/kindred/internal/storage"
	"github.com/scrypster/kindred/pkg/types"
)

// Service is the write-side façade over the edge store: validation, mirror
// maintenance, the approval workflow, and the inference cascade.
type Service struct {
	edges     storage.EdgeStore
	directory Directory

	// now is injectable for tests.
	now func() time.Time
}

// NewService creates a kinship service over the given edge store and
// person directory.
func NewService(edges storage.EdgeStore, directory Directory) *Service {
	return &Service{
		edges:     edges,
		directory: directory,
		now:       time.Now,
	}
}

// CreateEdgeRequest carries a caller-submitted edge intent.
type CreateEdgeRequest struct {
	SubjectID string
	ObjectID  string
	Type      types.RelationType

	StartDate *time.Time
	EndDate   *time.Time
	Notes     string

	// InitiatorID is the person submitting the request. Defaults to the
	// subject when empty, matching the convention that a relationship is
	// declared from the subject's point of view.
	InitiatorID string
}

// EdgeUpdate carries the caller-editable fields for UpdateEdge. Status is
// not editable here; it only moves through Approve and Reject.
type EdgeUpdate struct {
	StartDate *time.Time
	EndDate   *time.Time
	Notes     string
}

// CreateEdge validates and persists a new relationship edge, materializes
// its mirror, and runs the inference cascade when the edge qualifies.
//
// The returned edge is the primary (subject-side) edge. Its status is
// pending: the object must approve before the relationship shows up in any
// traversal query.
func (s *Service) CreateEdge(ctx context.Context, req CreateEdgeRequest) (*types.Edge, error) {
	if req.SubjectID == req.ObjectID {
		return nil, ErrSelfRelation
	}
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, req.Type)
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, ErrBadDateOrder
	}

	for _, id := range []string{req.SubjectID, req.ObjectID} {
		exists, err := s.directory.PersonExists(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("kinship: directory lookup for %s: %w", id, err)
		}
		if !exists {
			return nil, fmt.Errorf("%w: %s", ErrPersonNotFound, id)
		}
	}

	initiator := req.InitiatorID
	if initiator == "" {
		initiator = req.SubjectID
	}

	edge := &types.Edge{
		ID:          newEdgeID(),
		SubjectID:   req.SubjectID,
		ObjectID:    req.ObjectID,
		Type:        req.Type,
		Status:      types.EdgeStatusPending,
		InitiatorID: initiator,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Notes:       req.Notes,
	}

	if err := s.createMirrored(ctx, edge); err != nil {
		return nil, err
	}

	// Inference failures never roll back or block the committed edge.
	s.maybeInfer(ctx, edge)

	return edge, nil
}

// createMirrored persists an edge and materializes its mirror. The primary
// insert is authoritative: a duplicate there fails the whole call. The
// mirror insert is best-effort — a duplicate means the mirror already exists
// (possibly from a concurrent writer) and is fine; any other mirror failure
// is logged and surfaced, but the committed primary stands.
func (s *Service) createMirrored(ctx context.Context, edge *types.Edge) error {
	if err := s.edges.CreateEdge(ctx, edge); err != nil {
		if errors.Is(err, storage.ErrDuplicateEdge) {
			return fmt.Errorf("%w: (%s, %s, %s)", ErrDuplicateEdge, edge.SubjectID, edge.ObjectID, edge.Type)
		}
		return fmt.Errorf("kinship: create edge: %w", err)
	}

	if err := s.createMirror(ctx, edge); err != nil {
		log.Printf("kinship: mirror creation for edge %s failed: %v", edge.ID, err)
		return fmt.Errorf("kinship: edge %s committed but mirror creation failed: %w", edge.ID, err)
	}

	return nil
}

// UpdateEdge edits the dates and notes of an edge and overwrites the same
// fields on its mirror directly, without re-entering any create/update
// cascade. Only a participant (subject or object) may edit.
func (s *Service) UpdateEdge(ctx context.Context, edgeID, actingPersonID string, update EdgeUpdate) (*types.Edge, error) {
	edge, err := s.getEdge(ctx, edgeID)
	if err != nil {
		return nil, err
	}
	if actingPersonID != edge.SubjectID && actingPersonID != edge.ObjectID {
		return nil, ErrNotParticipant
	}
	if update.StartDate != nil && update.EndDate != nil && update.EndDate.Before(*update.StartDate) {
		return nil, ErrBadDateOrder
	}

	edge.StartDate = update.StartDate
	edge.EndDate = update.EndDate
	edge.Notes = update.Notes

	fields := storage.EdgeFieldUpdate{
		Status:    edge.Status,
		StartDate: edge.StartDate,
		EndDate:   edge.EndDate,
		Notes:     edge.Notes,
	}
	if err := s.edges.UpdateEdgeFields(ctx, edge.ID, fields); err != nil {
		return nil, fmt.Errorf("kinship: update edge %s: %w", edge.ID, err)
	}

	s.propagateFields(ctx, edge, fields)
	return edge, nil
}

// DeleteEdge removes an edge and its mirror. Only a participant may delete.
// A mirror that is already gone is a no-op, not an error.
func (s *Service) DeleteEdge(ctx context.Context, edgeID, actingPersonID string) error {
	edge, err := s.getEdge(ctx, edgeID)
	if err != nil {
		return err
	}
	if actingPersonID != edge.SubjectID && actingPersonID != edge.ObjectID {
		return ErrNotParticipant
	}

	if err := s.edges.DeleteEdge(ctx, edge.ID); err != nil {
		// A concurrent deleter beat us to it. Treat as done, but still
		// sweep the mirror below.
		if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("kinship: delete edge %s: %w", edge.ID, err)
		}
	}

	s.deleteMirror(ctx, edge)
	return nil
}

// PendingReceived returns the pending requests awaiting the person's
// decision: edges where they are the object and someone else initiated.
func (s *Service) PendingReceived(ctx context.Context, personID string) ([]types.Edge, error) {
	return s.edges.ListEdgesTo(ctx, personID, storage.EdgeFilter{
		Status:           types.EdgeStatusPending,
		ExcludeInitiator: personID,
	})
}

// PendingSent returns the pending requests the person has sent and is
// waiting on: edges where they are both subject and initiator.
func (s *Service) PendingSent(ctx context.Context, personID string) ([]types.Edge, error) {
	return s.edges.ListEdgesFrom(ctx, personID, storage.EdgeFilter{
		Status:    types.EdgeStatusPending,
		Initiator: personID,
	})
}

// AllEdgesInvolving returns every edge where the person appears on either
// side, regardless of status.
func (s *Service) AllEdgesInvolving(ctx context.Context, personID string) ([]types.Edge, error) {
	return s.edges.ListEdgesInvolving(ctx, personID)
}

// GetEdge retrieves a single edge by ID.
func (s *Service) GetEdge(ctx context.Context, edgeID string) (*types.Edge, error) {
	return s.getEdge(ctx, edgeID)
}

func (s *Service) getEdge(ctx context.Context, edgeID string) (*types.Edge, error) {
	edge, err := s.edges.GetEdge(ctx, edgeID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrEdgeNotFound, edgeID)
	}
	if err != nil {
		return nil, fmt.Errorf("kinship: get edge %s: %w", edgeID, err)
	}
	return edge, nil
}

// newEdgeID generates a unique edge identifier.
func newEdgeID() string {
	return "edge:" + uuid.NewString()
}
