package importer

import (
	"context"
	"strings"
	"testing"

	"github.com/scrypster/kindred/internal/directory"
	"github.com/scrypster/kindred/internal/kinship"
	"github.com/scrypster/kindred/internal/storage/sqlite"
	"github.com/scrypster/kindred/pkg/types"
)

const seedYAML = `
people:
  - ref: mom
    first_name: Marge
    email: marge@example.com
    birthday: 1956-03-19
  - ref: dad
    first_name: Homer
    email: homer@example.com
  - ref: bart
    first_name: Bart
    email: bart@example.com
  - ref: lisa
    first_name: Lisa
    email: lisa@example.com

relationships:
  - subject: mom
    object: dad
    type: spouse
    start_date: 1980-06-01
    approved: true
  - subject: bart
    object: mom
    type: parent
    approved: true
  - subject: lisa
    object: mom
    type: parent
    approved: true
`

func newTestImporter(t *testing.T) (*sqlite.Store, *Importer) {
	t.Helper()
	store, err := sqlite.NewStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	svc := kinship.NewService(store, directory.NewLocal(store, store))
	return store, New(store, svc)
}

func TestRunSeedsFamily(t *testing.T) {
	store, imp := newTestImporter(t)
	ctx := context.Background()

	result, err := imp.Run(ctx, strings.NewReader(seedYAML))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.PeopleCreated != 4 {
		t.Errorf("people created = %d, want 4", result.PeopleCreated)
	}
	if result.EdgesCreated != 3 {
		t.Errorf("edges created = %d, want 3", result.EdgesCreated)
	}
	if result.EdgesApproved != 3 {
		t.Errorf("edges approved = %d, want 3", result.EdgesApproved)
	}

	people, err := store.ListPeople(ctx)
	if err != nil {
		t.Fatalf("ListPeople failed: %v", err)
	}
	if len(people) != 4 {
		t.Fatalf("people in store = %d, want 4", len(people))
	}

	var bartID, momID string
	for i := range people {
		switch people[i].FirstName {
		case "Bart":
			bartID = people[i].ID
		case "Marge":
			momID = people[i].ID
		}
	}

	// The seed ran through the normal write pipeline, so inference derived
	// the step-parent (mom's spouse) and sibling edges.
	traversal := kinship.NewTraversal(store)
	parents, err := traversal.Parents(ctx, bartID, nil)
	if err != nil {
		t.Fatalf("Parents failed: %v", err)
	}
	found := false
	for _, id := range parents {
		if id == momID {
			found = true
		}
	}
	if !found {
		t.Error("Bart's parents should include Marge")
	}

	siblings, err := traversal.Siblings(ctx, bartID, nil)
	if err != nil {
		t.Fatalf("Siblings failed: %v", err)
	}
	if len(siblings) != 1 {
		t.Errorf("Bart's siblings = %v, want Lisa only", siblings)
	}

	stepParents := types.RelationStepParent
	steps, err := traversal.Parents(ctx, bartID, &stepParents)
	if err != nil {
		t.Fatalf("step-parents query failed: %v", err)
	}
	if len(steps) != 1 {
		t.Errorf("Bart's step-parents = %v, want Homer only", steps)
	}
}

func TestRunRejectsUnknownRefs(t *testing.T) {
	_, imp := newTestImporter(t)

	bad := `
people:
  - ref: only
    email: only@example.com
relationships:
  - subject: only
    object: nobody
    type: sibling
`
	if _, err := imp.Run(context.Background(), strings.NewReader(bad)); err == nil {
		t.Fatal("expected error for unknown object ref")
	}
}

func TestRunRejectsBadDates(t *testing.T) {
	_, imp := newTestImporter(t)

	bad := `
people:
  - ref: p
    email: p@example.com
    birthday: 19-03-1956
`
	if _, err := imp.Run(context.Background(), strings.NewReader(bad)); err == nil {
		t.Fatal("expected error for bad date format")
	}
}
