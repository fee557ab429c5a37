package kinship_test

import (
	"context"
	"errors"
	"testing"

	"github.com/scrypster/kindred/internal/kinship"
	"github.com/scrypster/kindred/pkg/types"
)

func TestApproveFlipsBothSides(t *testing.T) {
	store, svc := setup(t)
	ctx := context.Background()
	addPerson(t, store, "person:a", "Alice")
	addPerson(t, store, "person:b", "Bob")

	edge := declare(t, svc, kinship.CreateEdgeRequest{
		SubjectID: "person:a", ObjectID: "person:b", Type: types.RelationParent,
	})

	if err := svc.Approve(ctx, edge.ID, "person:b"); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	primary, err := store.GetEdge(ctx, edge.ID)
	if err != nil {
		t.Fatalf("GetEdge failed: %v", err)
	}
	if primary.Status != types.EdgeStatusApproved {
		t.Errorf("primary status = %s, want approved", primary.Status)
	}

	mirror, err := store.FindEdge(ctx, "person:b", "person:a", types.RelationChild)
	if err != nil {
		t.Fatalf("mirror not found: %v", err)
	}
	if mirror.Status != types.EdgeStatusApproved {
		t.Errorf("mirror status = %s, want approved", mirror.Status)
	}
}

func TestRejectFlipsBothSides(t *testing.T) {
	store, svc := setup(t)
	ctx := context.Background()
	addPerson(t, store, "person:a", "Alice")
	addPerson(t, store, "person:b", "Bob")

	edge := declare(t, svc, kinship.CreateEdgeRequest{
		SubjectID: "person:a", ObjectID: "person:b", Type: types.RelationSpouse,
	})

	if err := svc.Reject(ctx, edge.ID, "person:b"); err != nil {
		t.Fatalf("Reject failed: %v", err)
	}

	mirror, err := store.FindEdge(ctx, "person:b", "person:a", types.RelationSpouse)
	if err != nil {
		t.Fatalf("mirror not found: %v", err)
	}
	if mirror.Status != types.EdgeStatusRejected {
		t.Errorf("mirror status = %s, want rejected", mirror.Status)
	}
}

func TestApproveOnlyByRecipient(t *testing.T) {
	store, svc := setup(t)
	ctx := context.Background()
	addPerson(t, store, "person:a", "Alice")
	addPerson(t, store, "person:b", "Bob")
	addPerson(t, store, "person:c", "Cleo")

	edge := declare(t, svc, kinship.CreateEdgeRequest{
		SubjectID: "person:a", ObjectID: "person:b", Type: types.RelationSpouse,
	})

	// The requester cannot approve their own request.
	if err := svc.Approve(ctx, edge.ID, "person:a"); !errors.Is(err, kinship.ErrNotRecipient) {
		t.Errorf("subject approval: got %v, want ErrNotRecipient", err)
	}

	// Neither can a bystander.
	if err := svc.Approve(ctx, edge.ID, "person:c"); !errors.Is(err, kinship.ErrNotRecipient) {
		t.Errorf("bystander approval: got %v, want ErrNotRecipient", err)
	}

	// The edge stays pending.
	got, err := store.GetEdge(ctx, edge.ID)
	if err != nil {
		t.Fatalf("GetEdge failed: %v", err)
	}
	if !got.Pending() {
		t.Errorf("status = %s after denied approvals, want pending", got.Status)
	}
}

func TestInitiatorCannotDecideEvenAsRecipient(t *testing.T) {
	store, svc := setup(t)
	ctx := context.Background()
	addPerson(t, store, "person:a", "Alice")
	addPerson(t, store, "person:b", "Bob")

	// Bob entered the relationship on Alice's behalf: he is the object and
	// the initiator at once, so nobody may approve through this side.
	edge := declare(t, svc, kinship.CreateEdgeRequest{
		SubjectID:   "person:a",
		ObjectID:    "person:b",
		Type:        types.RelationSibling,
		InitiatorID: "person:b",
	})

	if err := svc.Approve(ctx, edge.ID, "person:b"); !errors.Is(err, kinship.ErrIsInitiator) {
		t.Errorf("initiator approval: got %v, want ErrIsInitiator", err)
	}
}

func TestDecisionsAreTerminal(t *testing.T) {
	store, svc := setup(t)
	ctx := context.Background()
	addPerson(t, store, "person:a", "Alice")
	addPerson(t, store, "person:b", "Bob")

	edge := declare(t, svc, kinship.CreateEdgeRequest{
		SubjectID: "person:a", ObjectID: "person:b", Type: types.RelationSpouse,
	})

	if err := svc.Reject(ctx, edge.ID, "person:b"); err != nil {
		t.Fatalf("Reject failed: %v", err)
	}

	// A rejected request cannot be approved afterwards.
	if err := svc.Approve(ctx, edge.ID, "person:b"); !errors.Is(err, kinship.ErrAlreadyDecided) {
		t.Errorf("approve after reject: got %v, want ErrAlreadyDecided", err)
	}

	// Nor rejected again.
	if err := svc.Reject(ctx, edge.ID, "person:b"); !errors.Is(err, kinship.ErrAlreadyDecided) {
		t.Errorf("double reject: got %v, want ErrAlreadyDecided", err)
	}
}

func TestApproveMissingEdge(t *testing.T) {
	_, svc := setup(t)

	err := svc.Approve(context.Background(), "edge:missing", "person:b")
	if !errors.Is(err, kinship.ErrEdgeNotFound) {
		t.Errorf("got %v, want ErrEdgeNotFound", err)
	}
}
