package kinship

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/scrypster/kindred/internal/storage"
	"github.com/scrypster/kindred/pkg/types"
)

// Inference: declaring a parent derives further relationships. The cascade
// fires only when a child declares their own parent — the edge's type is in
// the parent role family AND the subject initiated it. A parent declaring a
// child does not fire, because inferring from the parent's vantage point
// would manufacture sibling links the child never claimed.
//
// Derived edges are created approved, with the initiator and start date
// copied from the triggering edge and an explanatory note. They go through
// the same create-and-mirror path as caller-submitted edges but never back
// through the inference hook itself, so one declaration means exactly one
// inference pass regardless of what it derives.

// maybeInfer runs the inference cascade for a freshly created edge when it
// qualifies. Failures are logged per candidate and never abort the remaining
// candidates or the triggering edge.
func (s *Service) maybeInfer(ctx context.Context, trigger *types.Edge) {
	if trigger.Type.Role() != types.RoleParent {
		return
	}
	if trigger.InitiatorID != trigger.SubjectID {
		return
	}

	childID := trigger.SubjectID
	parentID := trigger.ObjectID

	if err := s.inferStepParent(ctx, trigger, childID, parentID); err != nil {
		log.Printf("kinship: could not infer step-parent for %s: %v", childID, err)
	}
	s.inferSiblings(ctx, trigger, childID, parentID)
}

// inferStepParent links the child to the declared parent's current active
// spouse as a step-parent, if there is one and the link does not already
// exist.
func (s *Service) inferStepParent(ctx context.Context, trigger *types.Edge, childID, parentID string) error {
	spouseID, err := s.directory.CurrentSpouse(ctx, parentID)
	if err != nil {
		return fmt.Errorf("current spouse lookup: %w", err)
	}
	if spouseID == "" || spouseID == childID {
		return nil
	}

	if _, err := s.edges.FindEdge(ctx, childID, spouseID, types.RelationStepParent); err == nil {
		return nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("existence check: %w", err)
	}

	parentName := s.displayNameOrID(ctx, parentID)
	derived := &types.Edge{
		ID:          newEdgeID(),
		SubjectID:   childID,
		ObjectID:    spouseID,
		Type:        types.RelationStepParent,
		Status:      types.EdgeStatusApproved,
		InitiatorID: trigger.InitiatorID,
		StartDate:   trigger.StartDate,
		Notes:       fmt.Sprintf("Auto-generated: %s's spouse", parentName),
	}

	if err := s.createMirrored(ctx, derived); err != nil {
		if errors.Is(err, ErrDuplicateEdge) {
			return nil
		}
		return err
	}
	return nil
}

// inferSiblings links the child to every other child of the declared parent,
// one edge per candidate, each existence-checked first.
func (s *Service) inferSiblings(ctx context.Context, trigger *types.Edge, childID, parentID string) {
	others, err := s.edges.ListEdgesFrom(ctx, parentID, storage.EdgeFilter{
		Types: types.ChildTypes(),
	})
	if err != nil {
		log.Printf("kinship: could not list children of %s for sibling inference: %v", parentID, err)
		return
	}

	siblingType := inferredSiblingType(trigger.Type)
	parentName := s.displayNameOrID(ctx, parentID)

	for _, other := range others {
		siblingID := other.ObjectID
		if siblingID == childID {
			continue
		}

		if _, err := s.edges.FindEdge(ctx, childID, siblingID, siblingType); err == nil {
			continue
		} else if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("kinship: sibling existence check (%s, %s) failed: %v", childID, siblingID, err)
			continue
		}

		derived := &types.Edge{
			ID:          newEdgeID(),
			SubjectID:   childID,
			ObjectID:    siblingID,
			Type:        siblingType,
			Status:      types.EdgeStatusApproved,
			InitiatorID: trigger.InitiatorID,
			StartDate:   trigger.StartDate,
			Notes:       fmt.Sprintf("Auto-generated: shares parent %s", parentName),
		}

		if err := s.createMirrored(ctx, derived); err != nil && !errors.Is(err, ErrDuplicateEdge) {
			log.Printf("kinship: could not create inferred sibling edge (%s, %s): %v", childID, siblingID, err)
		}
	}
}

// inferredSiblingType picks the sibling type derived from a declared parent
// edge: step-parent declarations derive step-siblings, everything else
// derives plain siblings.
func inferredSiblingType(trigger types.RelationType) types.RelationType {
	if trigger == types.RelationStepParent {
		return types.RelationStepSibling
	}
	return types.RelationSibling
}

// displayNameOrID resolves a display name for notes, falling back to the
// bare ID when the directory cannot answer.
func (s *Service) displayNameOrID(ctx context.Context, personID string) string {
	name, err := s.directory.DisplayName(ctx, personID)
	if err != nil || name == "" {
		return personID
	}
	return name
}
