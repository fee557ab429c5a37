package kinship

import "errors"

// Validation errors. Reported synchronously to the caller; nothing is
// persisted when any of them fires.
var (
	// ErrSelfRelation indicates subject and object are the same person.
	ErrSelfRelation = errors.New("person cannot be their own relative")

	// ErrInvalidType indicates the relationship type is not in the closed set.
	ErrInvalidType = errors.New("invalid relationship type")

	// ErrBadDateOrder indicates the end date precedes the start date.
	ErrBadDateOrder = errors.New("end date must not precede start date")

	// ErrDuplicateEdge indicates the (subject, object, type) triple already
	// exists.
	ErrDuplicateEdge = errors.New("relationship already exists")

	// ErrPersonNotFound indicates an endpoint or acting person is unknown to
	// the directory.
	ErrPersonNotFound = errors.New("person not found")

	// ErrEdgeNotFound indicates the referenced edge does not exist.
	ErrEdgeNotFound = errors.New("relationship not found")
)

// Authorization errors. No state is mutated when any of them fires.
var (
	// ErrNotRecipient indicates the acting person is not the edge's object.
	// Only the recipient of a relationship request may approve or reject it.
	ErrNotRecipient = errors.New("only the recipient can decide this request")

	// ErrIsInitiator indicates the acting person initiated the request and
	// therefore cannot approve their own request.
	ErrIsInitiator = errors.New("the initiator cannot decide their own request")

	// ErrNotParticipant indicates the acting person is neither subject nor
	// object of the edge.
	ErrNotParticipant = errors.New("not a participant in this relationship")

	// ErrAlreadyDecided indicates the edge has left the pending state.
	// Approved and rejected are terminal; there is no way back to pending.
	ErrAlreadyDecided = errors.New("request has already been decided")
)
