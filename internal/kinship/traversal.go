package kinship

import (
	"context"
	"fmt"
	"time"

	"github.com/scrypster/kindred/internal/storage"
	"github.com/scrypster/kindred/pkg/types"
)

// Traversal is the read-only query surface over the relationship graph.
// Every query sees approved edges only, and every walk that can revisit a
// node carries an explicit visited set: the kinship graph is not a tree —
// mutual spouses who share children already form a cycle, and remarriage and
// adoption chains add more — so no traversal here ever assumes acyclicity.
type Traversal struct {
	edges storage.EdgeStore

	// now is injectable for tests; it anchors "active" checks.
	now func() time.Time
}

// NewTraversal creates a traversal service over the given edge store.
func NewTraversal(edges storage.EdgeStore) *Traversal {
	return &Traversal{
		edges: edges,
		now:   time.Now,
	}
}

// Parents returns the IDs of the person's parents, optionally filtered to a
// single concrete parent type. A filter outside the parent role family
// matches nothing.
func (t *Traversal) Parents(ctx context.Context, personID string, typeFilter *types.RelationType) ([]string, error) {
	return t.roleObjects(ctx, personID, types.RoleParent, typeFilter)
}

// Children returns the IDs of the person's children, optionally filtered to
// a single concrete child type.
func (t *Traversal) Children(ctx context.Context, personID string, typeFilter *types.RelationType) ([]string, error) {
	return t.roleObjects(ctx, personID, types.RoleChild, typeFilter)
}

// Siblings returns the IDs of the person's siblings, optionally filtered to
// a single concrete sibling type.
func (t *Traversal) Siblings(ctx context.Context, personID string, typeFilter *types.RelationType) ([]string, error) {
	return t.roleObjects(ctx, personID, types.RoleSibling, typeFilter)
}

// Spouses returns the IDs of the person's spouses and partners. Ex-spouses
// and ex-partners are included only when includeEx is set.
func (t *Traversal) Spouses(ctx context.Context, personID string, includeEx bool) ([]string, error) {
	relTypes := types.CurrentSpousalTypes()
	if includeEx {
		relTypes = types.SpousalTypes()
	}

	edges, err := t.edges.ListEdgesFrom(ctx, personID, storage.EdgeFilter{
		Types:  relTypes,
		Status: types.EdgeStatusApproved,
	})
	if err != nil {
		return nil, fmt.Errorf("kinship: spouses of %s: %w", personID, err)
	}
	return objectIDs(edges), nil
}

// CurrentSpouse returns the ID of the person's current active spouse or
// partner, or "" when there is none. An edge is active when its end date is
// null or in the future; at most one active spousal edge is meaningful even
// if several exist.
func (t *Traversal) CurrentSpouse(ctx context.Context, personID string) (string, error) {
	edges, err := t.edges.ListEdgesFrom(ctx, personID, storage.EdgeFilter{
		Types:    types.CurrentSpousalTypes(),
		Status:   types.EdgeStatusApproved,
		ActiveAt: t.now(),
	})
	if err != nil {
		return "", fmt.Errorf("kinship: current spouse of %s: %w", personID, err)
	}
	if len(edges) == 0 {
		return "", nil
	}
	return edges[0].ObjectID, nil
}

// Grandparents returns the parents of the person's parents, deduplicated.
func (t *Traversal) Grandparents(ctx context.Context, personID string) ([]string, error) {
	return t.secondHop(ctx, personID, t.noFilterParents, t.noFilterParents)
}

// Grandchildren returns the children of the person's children, deduplicated.
func (t *Traversal) Grandchildren(ctx context.Context, personID string) ([]string, error) {
	return t.secondHop(ctx, personID, t.noFilterChildren, t.noFilterChildren)
}

// AuntsAndUncles returns the siblings of the person's parents, deduplicated.
func (t *Traversal) AuntsAndUncles(ctx context.Context, personID string) ([]string, error) {
	return t.secondHop(ctx, personID, t.noFilterParents, t.noFilterSiblings)
}

// NiecesAndNephews returns the children of the person's siblings,
// deduplicated.
func (t *Traversal) NiecesAndNephews(ctx context.Context, personID string) ([]string, error) {
	return t.secondHop(ctx, personID, t.noFilterSiblings, t.noFilterChildren)
}

// Cousins returns the children of the person's aunts and uncles,
// deduplicated.
func (t *Traversal) Cousins(ctx context.Context, personID string) ([]string, error) {
	auntsUncles, err := t.AuntsAndUncles(ctx, personID)
	if err != nil {
		return nil, err
	}
	return t.fanOut(ctx, personID, auntsUncles, t.noFilterChildren)
}

// Ancestors returns the upward closure over parents. generations bounds the
// walk to levels 1..N; zero or negative means unbounded, in which case the
// visited set is what guarantees termination on cyclic data.
// Results are deduplicated across all visited levels, not merely per level.
func (t *Traversal) Ancestors(ctx context.Context, personID string, generations int) ([]string, error) {
	return t.closure(ctx, personID, generations, t.noFilterParents)
}

// Descendants returns the downward closure over children, symmetric to
// Ancestors.
func (t *Traversal) Descendants(ctx context.Context, personID string, generations int) ([]string, error) {
	return t.closure(ctx, personID, generations, t.noFilterChildren)
}

// DirectFamily returns everyone one approved edge away from the person, in
// either stored direction, deduplicated.
func (t *Traversal) DirectFamily(ctx context.Context, personID string) ([]string, error) {
	out, err := t.edges.ListEdgesFrom(ctx, personID, storage.EdgeFilter{
		Status: types.EdgeStatusApproved,
	})
	if err != nil {
		return nil, fmt.Errorf("kinship: direct family of %s: %w", personID, err)
	}
	in, err := t.edges.ListEdgesTo(ctx, personID, storage.EdgeFilter{
		Status: types.EdgeStatusApproved,
	})
	if err != nil {
		return nil, fmt.Errorf("kinship: direct family of %s: %w", personID, err)
	}

	seen := map[string]bool{personID: true}
	var family []string
	for _, e := range out {
		if !seen[e.ObjectID] {
			seen[e.ObjectID] = true
			family = append(family, e.ObjectID)
		}
	}
	for _, e := range in {
		if !seen[e.SubjectID] {
			seen[e.SubjectID] = true
			family = append(family, e.SubjectID)
		}
	}
	return family, nil
}

// AllConnectedFamily returns every person reachable from the start through
// any chain of approved edges, treating the graph as undirected. Iterative
// DFS with a visited set; each person appears exactly once and the start is
// excluded.
func (t *Traversal) AllConnectedFamily(ctx context.Context, personID string) ([]string, error) {
	visited := map[string]bool{personID: true}
	var connected []string

	stack := []string{personID}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		neighbors, err := t.DirectFamily(ctx, current)
		if err != nil {
			return nil, err
		}
		for _, n := range neighbors {
			if visited[n] {
				continue
			}
			visited[n] = true
			connected = append(connected, n)
			stack = append(stack, n)
		}
	}
	return connected, nil
}

// RelatedTo reports whether the person has an approved edge to the other
// person, optionally restricted to one relationship type.
func (t *Traversal) RelatedTo(ctx context.Context, personID, otherID string, typeFilter *types.RelationType) (bool, error) {
	filter := storage.EdgeFilter{Status: types.EdgeStatusApproved}
	if typeFilter != nil {
		filter.Types = []types.RelationType{*typeFilter}
	}

	edges, err := t.edges.ListEdgesFrom(ctx, personID, filter)
	if err != nil {
		return false, fmt.Errorf("kinship: relatedTo (%s, %s): %w", personID, otherID, err)
	}
	for _, e := range edges {
		if e.ObjectID == otherID {
			return true, nil
		}
	}
	return false, nil
}

// ---------------------------------------------------------------------------
// Internal helpers
// ---------------------------------------------------------------------------

// hop fetches one step of related person IDs for a person.
type hop func(ctx context.Context, personID string) ([]string, error)

func (t *Traversal) noFilterParents(ctx context.Context, personID string) ([]string, error) {
	return t.Parents(ctx, personID, nil)
}

func (t *Traversal) noFilterChildren(ctx context.Context, personID string) ([]string, error) {
	return t.Children(ctx, personID, nil)
}

func (t *Traversal) noFilterSiblings(ctx context.Context, personID string) ([]string, error) {
	return t.Siblings(ctx, personID, nil)
}

// roleObjects lists the approved edges of one role family from a person and
// maps them to object IDs. A concrete type filter narrows within the family;
// a filter from another family yields nothing.
func (t *Traversal) roleObjects(ctx context.Context, personID string, role types.RoleFamily, typeFilter *types.RelationType) ([]string, error) {
	relTypes := types.TypesInRole(role)
	if typeFilter != nil {
		if typeFilter.Role() != role {
			return nil, nil
		}
		relTypes = []types.RelationType{*typeFilter}
	}

	edges, err := t.edges.ListEdgesFrom(ctx, personID, storage.EdgeFilter{
		Types:  relTypes,
		Status: types.EdgeStatusApproved,
	})
	if err != nil {
		return nil, fmt.Errorf("kinship: %s edges of %s: %w", role, personID, err)
	}
	return objectIDs(edges), nil
}

// secondHop computes first(person) then fans out over second, deduplicating
// by person identity and excluding the person themselves.
func (t *Traversal) secondHop(ctx context.Context, personID string, first, second hop) ([]string, error) {
	middle, err := first(ctx, personID)
	if err != nil {
		return nil, err
	}
	return t.fanOut(ctx, personID, middle, second)
}

// fanOut applies step to every person in middle and unions the results,
// deduplicated, excluding self.
func (t *Traversal) fanOut(ctx context.Context, selfID string, middle []string, step hop) ([]string, error) {
	seen := map[string]bool{selfID: true}
	var result []string

	for _, id := range middle {
		related, err := step(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, r := range related {
			if !seen[r] {
				seen[r] = true
				result = append(result, r)
			}
		}
	}
	return result, nil
}

// closure walks level by level over step, collecting every person found in
// levels 1..generations (or until a level comes back empty when unbounded).
// The visited set spans all levels, which both deduplicates across levels
// and terminates the walk on cyclic data.
func (t *Traversal) closure(ctx context.Context, personID string, generations int, step hop) ([]string, error) {
	visited := map[string]bool{personID: true}
	var result []string

	level := []string{personID}
	for depth := 1; generations <= 0 || depth <= generations; depth++ {
		var next []string
		for _, id := range level {
			related, err := step(ctx, id)
			if err != nil {
				return nil, err
			}
			for _, r := range related {
				if visited[r] {
					continue
				}
				visited[r] = true
				result = append(result, r)
				next = append(next, r)
			}
		}
		if len(next) == 0 {
			break
		}
		level = next
	}
	return result, nil
}

// objectIDs maps edges to their object IDs, preserving order.
func objectIDs(edges []types.Edge) []string {
	ids := make([]string, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.ObjectID)
	}
	return ids
}
