package kinship

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/scrypster/kindred/internal/storage"
	"github.com/scrypster/kindred/pkg/types"
)

// Reciprocal consistency: every edge (A, B, t) coexists with its mirror
// (B, A, reciprocal(t)) carrying the same status, initiator, dates, and
// notes. The three operations here are the only code that touches mirrors,
// and all of them use single-shot store primitives so mirror maintenance
// can never re-enter itself.

// createMirror materializes the mirror of a freshly created primary edge.
// If the mirror already exists — either from a previous call or because a
// concurrent writer created it — that is success, not failure.
func (s *Service) createMirror(ctx context.Context, primary *types.Edge) error {
	mirrorSubject, mirrorObject, mirrorType := primary.MirrorKey()

	_, err := s.edges.FindEdge(ctx, mirrorSubject, mirrorObject, mirrorType)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("mirror lookup: %w", err)
	}

	mirror := &types.Edge{
		ID:          newEdgeID(),
		SubjectID:   mirrorSubject,
		ObjectID:    mirrorObject,
		Type:        mirrorType,
		Status:      primary.Status,
		InitiatorID: primary.InitiatorID,
		StartDate:   primary.StartDate,
		EndDate:     primary.EndDate,
		Notes:       primary.Notes,
	}

	if err := s.edges.CreateEdge(ctx, mirror); err != nil {
		// Lost the check-then-insert race; the winner's row is our mirror.
		if errors.Is(err, storage.ErrDuplicateEdge) {
			return nil
		}
		return fmt.Errorf("mirror insert: %w", err)
	}
	return nil
}

// propagateFields overwrites the mirror's mutable fields after a primary
// edit. This is a direct row overwrite, not a recursive update: the mirror's
// own update path is never invoked, which is what prevents the two sides
// from oscillating.
func (s *Service) propagateFields(ctx context.Context, primary *types.Edge, fields storage.EdgeFieldUpdate) {
	mirror, err := s.findMirror(ctx, primary)
	if err != nil {
		log.Printf("kinship: mirror of edge %s not found during field propagation: %v", primary.ID, err)
		return
	}

	if err := s.edges.UpdateEdgeFields(ctx, mirror.ID, fields); err != nil {
		log.Printf("kinship: failed to propagate fields to mirror %s of edge %s: %v", mirror.ID, primary.ID, err)
	}
}

// deleteMirror removes the mirror of a deleted primary edge, once. The
// mirror's deletion uses the single-shot store primitive, so it cannot turn
// around and try to delete the (already deleted) primary.
func (s *Service) deleteMirror(ctx context.Context, primary *types.Edge) {
	mirror, err := s.findMirror(ctx, primary)
	if err != nil {
		// Already gone: pair fully deleted.
		if errors.Is(err, storage.ErrNotFound) {
			return
		}
		log.Printf("kinship: mirror lookup for deleted edge %s failed: %v", primary.ID, err)
		return
	}

	if err := s.edges.DeleteEdge(ctx, mirror.ID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		log.Printf("kinship: failed to delete mirror %s of edge %s: %v", mirror.ID, primary.ID, err)
	}
}

// findMirror locates the mirror of an edge by its reverse key.
func (s *Service) findMirror(ctx context.Context, primary *types.Edge) (*types.Edge, error) {
	mirrorSubject, mirrorObject, mirrorType := primary.MirrorKey()
	return s.edges.FindEdge(ctx, mirrorSubject, mirrorObject, mirrorType)
}
