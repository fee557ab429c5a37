package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/scrypster/kindred/internal/kinship"
	"github.com/scrypster/kindred/pkg/types"
)

// EventBroadcaster receives relationship lifecycle events for fan-out to
// WebSocket clients. The hub satisfies it; tests substitute a recorder.
type EventBroadcaster interface {
	Broadcast(message interface{})
}

// RelationshipEvent is the message broadcast on relationship lifecycle
// changes.
type RelationshipEvent struct {
	Event     string `json:"event"`
	EdgeID    string `json:"edge_id"`
	SubjectID string `json:"subject_id"`
	ObjectID  string `json:"object_id"`
	Type      string `json:"type"`
	Status    string `json:"status"`
}

// RelationshipHandlers contains the HTTP handlers for relationship edges:
// creation, editing, deletion, the approval workflow, and the pending views.
type RelationshipHandlers struct {
	svc    *kinship.Service
	events EventBroadcaster
}

// NewRelationshipHandlers creates handlers over the kinship service. events
// may be nil when no WebSocket hub is wired.
func NewRelationshipHandlers(svc *kinship.Service, events EventBroadcaster) *RelationshipHandlers {
	return &RelationshipHandlers{svc: svc, events: events}
}

// CreateRelationship handles POST /api/relationships. The acting person
// (X-Person-ID) is recorded as the initiator; when absent the subject is
// assumed to be acting on their own behalf.
func (h *RelationshipHandlers) CreateRelationship(w http.ResponseWriter, r *http.Request) {
	var req CreateRelationshipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.SubjectID == "" || req.ObjectID == "" || req.Type == "" {
		respondError(w, http.StatusBadRequest, "subject_id, object_id, and type are required", nil)
		return
	}

	edge, err := h.svc.CreateEdge(r.Context(), kinship.CreateEdgeRequest{
		SubjectID:   req.SubjectID,
		ObjectID:    req.ObjectID,
		Type:        types.RelationType(req.Type),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Notes:       req.Notes,
		InitiatorID: actingPerson(r),
	})
	if err != nil {
		respondError(w, kinshipStatus(err), "failed to create relationship", err)
		return
	}

	h.emit("relationship.created", edge)
	respondJSON(w, http.StatusCreated, edge)
}

// GetRelationship handles GET /api/relationships/{id}.
func (h *RelationshipHandlers) GetRelationship(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")
	edge, err := h.svc.GetEdge(r.Context(), id)
	if err != nil {
		respondError(w, kinshipStatus(err), "failed to get relationship", err)
		return
	}
	respondJSON(w, http.StatusOK, edge)
}

// UpdateRelationship handles PATCH /api/relationships/{id}. Edits dates and
// notes; the same fields are propagated to the mirror edge.
func (h *RelationshipHandlers) UpdateRelationship(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")

	var req UpdateRelationshipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	edge, err := h.svc.UpdateEdge(r.Context(), id, actingPerson(r), kinship.EdgeUpdate{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Notes:     req.Notes,
	})
	if err != nil {
		respondError(w, kinshipStatus(err), "failed to update relationship", err)
		return
	}

	h.emit("relationship.updated", edge)
	respondJSON(w, http.StatusOK, edge)
}

// DeleteRelationship handles DELETE /api/relationships/{id}. Removes the edge
// and its mirror; only a participant may delete.
func (h *RelationshipHandlers) DeleteRelationship(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")

	edge, err := h.svc.GetEdge(r.Context(), id)
	if err != nil {
		respondError(w, kinshipStatus(err), "failed to delete relationship", err)
		return
	}

	if err := h.svc.DeleteEdge(r.Context(), id, actingPerson(r)); err != nil {
		respondError(w, kinshipStatus(err), "failed to delete relationship", err)
		return
	}

	h.emit("relationship.deleted", edge)
	w.WriteHeader(http.StatusNoContent)
}

// ApproveRelationship handles POST /api/relationships/{id}/approve.
func (h *RelationshipHandlers) ApproveRelationship(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, types.EdgeStatusApproved)
}

// RejectRelationship handles POST /api/relationships/{id}/reject.
func (h *RelationshipHandlers) RejectRelationship(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, types.EdgeStatusRejected)
}

func (h *RelationshipHandlers) decide(w http.ResponseWriter, r *http.Request, status types.EdgeStatus) {
	id := extractID(r, "id")
	acting := actingPerson(r)
	if acting == "" {
		respondError(w, http.StatusBadRequest, "X-Person-ID header is required", nil)
		return
	}

	var err error
	if status == types.EdgeStatusApproved {
		err = h.svc.Approve(r.Context(), id, acting)
	} else {
		err = h.svc.Reject(r.Context(), id, acting)
	}
	if err != nil {
		respondError(w, kinshipStatus(err), "failed to decide relationship", err)
		return
	}

	edge, err := h.svc.GetEdge(r.Context(), id)
	if err != nil {
		respondError(w, kinshipStatus(err), "failed to load decided relationship", err)
		return
	}

	if status == types.EdgeStatusApproved {
		h.emit("relationship.approved", edge)
	} else {
		h.emit("relationship.rejected", edge)
	}
	respondJSON(w, http.StatusOK, edge)
}

// ListRelationships handles GET /api/relationships: every edge involving the
// acting person, regardless of status.
func (h *RelationshipHandlers) ListRelationships(w http.ResponseWriter, r *http.Request) {
	acting := actingPerson(r)
	if acting == "" {
		respondError(w, http.StatusBadRequest, "X-Person-ID header is required", nil)
		return
	}

	edges, err := h.svc.AllEdgesInvolving(r.Context(), acting)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list relationships", err)
		return
	}
	respondJSON(w, http.StatusOK, EdgesResponse{Edges: edges, Total: len(edges)})
}

// PendingReceived handles GET /api/relationships/pending: requests awaiting
// the acting person's decision.
func (h *RelationshipHandlers) PendingReceived(w http.ResponseWriter, r *http.Request) {
	acting := actingPerson(r)
	if acting == "" {
		respondError(w, http.StatusBadRequest, "X-Person-ID header is required", nil)
		return
	}

	edges, err := h.svc.PendingReceived(r.Context(), acting)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list pending requests", err)
		return
	}
	respondJSON(w, http.StatusOK, EdgesResponse{Edges: edges, Total: len(edges)})
}

// PendingSent handles GET /api/relationships/sent: requests the acting person
// has sent and is waiting on.
func (h *RelationshipHandlers) PendingSent(w http.ResponseWriter, r *http.Request) {
	acting := actingPerson(r)
	if acting == "" {
		respondError(w, http.StatusBadRequest, "X-Person-ID header is required", nil)
		return
	}

	edges, err := h.svc.PendingSent(r.Context(), acting)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list sent requests", err)
		return
	}
	respondJSON(w, http.StatusOK, EdgesResponse{Edges: edges, Total: len(edges)})
}

func (h *RelationshipHandlers) emit(event string, edge *types.Edge) {
	if h.events == nil {
		return
	}
	h.events.Broadcast(RelationshipEvent{
		Event:     event,
		EdgeID:    edge.ID,
		SubjectID: edge.SubjectID,
		ObjectID:  edge.ObjectID,
		Type:      string(edge.Type),
		Status:    string(edge.Status),
	})
}

// kinshipStatus maps kinship errors onto HTTP status codes.
func kinshipStatus(err error) int {
	switch {
	case errors.Is(err, kinship.ErrEdgeNotFound),
		errors.Is(err, kinship.ErrPersonNotFound):
		return http.StatusNotFound
	case errors.Is(err, kinship.ErrNotRecipient),
		errors.Is(err, kinship.ErrIsInitiator),
		errors.Is(err, kinship.ErrNotParticipant):
		return http.StatusForbidden
	case errors.Is(err, kinship.ErrDuplicateEdge),
		errors.Is(err, kinship.ErrAlreadyDecided):
		return http.StatusConflict
	case errors.Is(err, kinship.ErrSelfRelation),
		errors.Is(err, kinship.ErrInvalidType),
		errors.Is(err, kinship.ErrBadDateOrder):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
