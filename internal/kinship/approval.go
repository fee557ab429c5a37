package kinship

import (
	"context"
	"errors"
	"fmt"

	"github.com/scrypster/kindred/internal/storage"
	"github.com/scrypster/kindred/pkg/types"
)

// Approval workflow: pending -> approved or pending -> rejected, both
// terminal. The recipient of the request — the edge's object — decides, and
// the initiator can never decide their own request. The decision lands on
// both sides of the mirror pair in one transaction, so no reader ever sees
// the pair half-decided.

// Approve transitions a pending edge and its mirror to approved.
func (s *Service) Approve(ctx context.Context, edgeID, actingPersonID string) error {
	return s.decide(ctx, edgeID, actingPersonID, types.EdgeStatusApproved)
}

// Reject transitions a pending edge and its mirror to rejected.
func (s *Service) Reject(ctx context.Context, edgeID, actingPersonID string) error {
	return s.decide(ctx, edgeID, actingPersonID, types.EdgeStatusRejected)
}

func (s *Service) decide(ctx context.Context, edgeID, actingPersonID string, status types.EdgeStatus) error {
	edge, err := s.getEdge(ctx, edgeID)
	if err != nil {
		return err
	}

	if actingPersonID != edge.ObjectID {
		return ErrNotRecipient
	}
	if actingPersonID == edge.InitiatorID {
		return ErrIsInitiator
	}
	if !edge.Pending() {
		return fmt.Errorf("%w: status is %s", ErrAlreadyDecided, edge.Status)
	}

	mirror, err := s.findMirror(ctx, edge)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Mirror was never materialized (a known gap under races).
			// Decide the primary alone rather than wedging the request.
			if err := s.edges.UpdateEdgeFields(ctx, edge.ID, storage.EdgeFieldUpdate{
				Status:    status,
				StartDate: edge.StartDate,
				EndDate:   edge.EndDate,
				Notes:     edge.Notes,
			}); err != nil {
				return fmt.Errorf("kinship: decide edge %s: %w", edge.ID, err)
			}
			return nil
		}
		return fmt.Errorf("kinship: mirror lookup for edge %s: %w", edge.ID, err)
	}

	if err := s.edges.UpdateStatusPair(ctx, edge.ID, mirror.ID, status); err != nil {
		return fmt.Errorf("kinship: decide edge pair (%s, %s): %w", edge.ID, mirror.ID, err)
	}
	return nil
}
