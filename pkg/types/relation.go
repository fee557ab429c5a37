// Package types defines the core data structures for the Kindred kinship
// graph: people, relationship edges, and the closed relationship type set
// with its role-family and reciprocal tables.
package types

// RelationType identifies one of the closed set of relationship types.
type RelationType string

// RoleFamily partitions the relationship types into the four role families
// used by validation, inference, and traversal.
type RoleFamily string

// Role family constants.
const (
	// RoleParent covers the four parent-side types.
	RoleParent RoleFamily = "parent"

	// RoleChild covers the four child-side types.
	RoleChild RoleFamily = "child"

	// RoleSpousal covers spouse/partner types, current and ex.
	RoleSpousal RoleFamily = "spousal"

	// RoleSibling covers full, half, and step siblings.
	RoleSibling RoleFamily = "sibling"
)

// Relationship type constants.
const (
	RelationParent           RelationType = "parent"
	RelationChild            RelationType = "child"
	RelationBiologicalParent RelationType = "biological_parent"
	RelationBiologicalChild  RelationType = "biological_child"
	RelationAdoptiveParent   RelationType = "adoptive_parent"
	RelationAdoptiveChild    RelationType = "adoptive_child"
	RelationStepParent       RelationType = "step_parent"
	RelationStepChild        RelationType = "step_child"

	RelationSpouse    RelationType = "spouse"
	RelationExSpouse  RelationType = "ex_spouse"
	RelationPartner   RelationType = "partner"
	RelationExPartner RelationType = "ex_partner"

	RelationSibling     RelationType = "sibling"
	RelationHalfSibling RelationType = "half_sibling"
	RelationStepSibling RelationType = "step_sibling"
)

// relationInfo records the static role family and reciprocal type of a
// relationship type. The table is built once and referenced everywhere type
// logic is needed; there is no name-based classification anywhere else.
type relationInfo struct {
	role       RoleFamily
	reciprocal RelationType
}

// relationTable is the single source of truth for the closed type set.
// Spousal and sibling types are their own reciprocal, so the table as a
// whole is an involution: reciprocal(reciprocal(t)) == t for every t.
var relationTable = map[RelationType]relationInfo{
	RelationParent:           {RoleParent, RelationChild},
	RelationBiologicalParent: {RoleParent, RelationBiologicalChild},
	RelationAdoptiveParent:   {RoleParent, RelationAdoptiveChild},
	RelationStepParent:       {RoleParent, RelationStepChild},

	RelationChild:            {RoleChild, RelationParent},
	RelationBiologicalChild:  {RoleChild, RelationBiologicalParent},
	RelationAdoptiveChild:    {RoleChild, RelationAdoptiveParent},
	RelationStepChild:        {RoleChild, RelationStepParent},

	RelationSpouse:    {RoleSpousal, RelationSpouse},
	RelationExSpouse:  {RoleSpousal, RelationExSpouse},
	RelationPartner:   {RoleSpousal, RelationPartner},
	RelationExPartner: {RoleSpousal, RelationExPartner},

	RelationSibling:     {RoleSibling, RelationSibling},
	RelationHalfSibling: {RoleSibling, RelationHalfSibling},
	RelationStepSibling: {RoleSibling, RelationStepSibling},
}

// AllRelationTypes returns every type in the closed set.
// The slice is freshly allocated; callers may modify it.
func AllRelationTypes() []RelationType {
	out := make([]RelationType, 0, len(relationTable))
	for t := range relationTable {
		out = append(out, t)
	}
	return out
}

// Valid reports whether t belongs to the closed type set.
func (t RelationType) Valid() bool {
	_, ok := relationTable[t]
	return ok
}

// Role returns the role family of t. Unknown types return an empty RoleFamily.
func (t RelationType) Role() RoleFamily {
	return relationTable[t].role
}

// Reciprocal returns the type of the mirror edge for an edge of type t.
// Parent types map to their child counterpart and vice versa; spousal and
// sibling types map to themselves. Unknown types return an empty RelationType.
func (t RelationType) Reciprocal() RelationType {
	return relationTable[t].reciprocal
}

// TypesInRole returns every relationship type belonging to the given role
// family, in a stable order suitable for SQL IN clauses.
func TypesInRole(role RoleFamily) []RelationType {
	var out []RelationType
	for _, t := range orderedRelationTypes {
		if relationTable[t].role == role {
			out = append(out, t)
		}
	}
	return out
}

// ParentTypes returns the parent-side types (parent, biological, adoptive, step).
func ParentTypes() []RelationType { return TypesInRole(RoleParent) }

// ChildTypes returns the child-side types.
func ChildTypes() []RelationType { return TypesInRole(RoleChild) }

// SpousalTypes returns all spousal types including ex-spouse and ex-partner.
func SpousalTypes() []RelationType { return TypesInRole(RoleSpousal) }

// SiblingTypes returns sibling, half_sibling, and step_sibling.
func SiblingTypes() []RelationType { return TypesInRole(RoleSibling) }

// CurrentSpousalTypes returns the spousal types that denote a current
// relationship. Ex-spouse and ex-partner are excluded.
func CurrentSpousalTypes() []RelationType {
	return []RelationType{RelationSpouse, RelationPartner}
}

// orderedRelationTypes fixes iteration order for TypesInRole so that query
// plans and test output are deterministic.
var orderedRelationTypes = []RelationType{
	RelationParent, RelationBiologicalParent, RelationAdoptiveParent, RelationStepParent,
	RelationChild, RelationBiologicalChild, RelationAdoptiveChild, RelationStepChild,
	RelationSpouse, RelationExSpouse, RelationPartner, RelationExPartner,
	RelationSibling, RelationHalfSibling, RelationStepSibling,
}
