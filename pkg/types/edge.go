package types

import "time"

// EdgeStatus represents the approval state of a relationship edge.
type EdgeStatus string

// Edge status constants. Pending edges await approval by the recipient;
// approved and rejected are terminal.
const (
	EdgeStatusPending  EdgeStatus = "pending"
	EdgeStatusApproved EdgeStatus = "approved"
	EdgeStatusRejected EdgeStatus = "rejected"
)

// ValidEdgeStatus reports whether s is one of the defined statuses.
func ValidEdgeStatus(s EdgeStatus) bool {
	switch s {
	case EdgeStatusPending, EdgeStatusApproved, EdgeStatusRejected:
		return true
	}
	return false
}

// Edge is a single directed relationship record between two people.
// Every persisted edge with SubjectID != ObjectID has a mirror edge
// (ObjectID, SubjectID, Type.Reciprocal()) carrying the same status,
// initiator, dates, and notes; the pair is created, updated, and destroyed
// together. There is no separate relationship super-entity — the mirror
// pair is the bidirectional relationship.
type Edge struct {
	// ID is the unique identifier (format: edge:uuid).
	ID string `json:"id"`

	// SubjectID is the person from whose vantage point the edge reads.
	SubjectID string `json:"subject_id"`

	// ObjectID is the person the subject is related to.
	ObjectID string `json:"object_id"`

	// Type is one of the closed relationship type set. It names what the
	// object is to the subject: "B is A's parent" stores subject=A,
	// object=B, type=parent.
	Type RelationType `json:"type"`

	// Status is pending, approved, or rejected. Mirrors always carry the
	// same status as their primary.
	Status EdgeStatus `json:"status"`

	// InitiatorID is the person who originally requested the relationship.
	// It is preserved through mirroring and inference: the mirror of an edge
	// initiated by A is still initiated by A.
	InitiatorID string `json:"initiator_id"`

	// StartDate and EndDate bound the validity window. An edge with no end
	// date, or one in the future, is active.
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`

	// Notes carries free-form context. Inferred edges record why they were
	// derived here.
	Notes string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Active reports whether the edge is in effect at the given time:
// no end date, or an end date strictly in the future.
func (e *Edge) Active(now time.Time) bool {
	return e.EndDate == nil || e.EndDate.After(now)
}

// Pending reports whether the edge awaits approval.
func (e *Edge) Pending() bool { return e.Status == EdgeStatusPending }

// Approved reports whether the edge has been approved.
func (e *Edge) Approved() bool { return e.Status == EdgeStatusApproved }

// Rejected reports whether the edge has been rejected.
func (e *Edge) Rejected() bool { return e.Status == EdgeStatusRejected }

// MirrorKey returns the (subject, object, type) triple that identifies this
// edge's mirror.
func (e *Edge) MirrorKey() (subjectID, objectID string, relType RelationType) {
	return e.ObjectID, e.SubjectID, e.Type.Reciprocal()
}
