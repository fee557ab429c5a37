package handlers

import (
	"context"
	"net/http"

	"github.com/scrypster/kindred/internal/kinship"
	"github.com/scrypster/kindred/pkg/types"
)

// FamilyHandlers contains the HTTP handlers for the graph traversal queries.
// Every endpoint resolves person IDs into summaries through the directory so
// clients get names without a second round trip.
type FamilyHandlers struct {
	traversal *kinship.Traversal
	directory kinship.Directory
}

// NewFamilyHandlers creates traversal handlers over the given traversal
// service and person directory.
func NewFamilyHandlers(traversal *kinship.Traversal, directory kinship.Directory) *FamilyHandlers {
	return &FamilyHandlers{traversal: traversal, directory: directory}
}

// Parents handles GET /api/people/{id}/parents. The optional "type" query
// parameter narrows to a single concrete parent type.
func (h *FamilyHandlers) Parents(w http.ResponseWriter, r *http.Request) {
	h.respondRole(w, r, h.traversal.Parents)
}

// Children handles GET /api/people/{id}/children.
func (h *FamilyHandlers) Children(w http.ResponseWriter, r *http.Request) {
	h.respondRole(w, r, h.traversal.Children)
}

// Siblings handles GET /api/people/{id}/siblings.
func (h *FamilyHandlers) Siblings(w http.ResponseWriter, r *http.Request) {
	h.respondRole(w, r, h.traversal.Siblings)
}

// Spouses handles GET /api/people/{id}/spouses. Ex-spouses and ex-partners
// are included when include_ex=true.
func (h *FamilyHandlers) Spouses(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")
	includeEx := r.URL.Query().Get("include_ex") == "true"

	ids, err := h.traversal.Spouses(r.Context(), id, includeEx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to query spouses", err)
		return
	}
	h.respondPeople(w, r.Context(), ids)
}

// CurrentSpouse handles GET /api/people/{id}/current-spouse. Responds 404
// when the person has no current active spouse or partner.
func (h *FamilyHandlers) CurrentSpouse(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")

	spouseID, err := h.traversal.CurrentSpouse(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to query current spouse", err)
		return
	}
	if spouseID == "" {
		respondError(w, http.StatusNotFound, "no current spouse", nil)
		return
	}
	respondJSON(w, http.StatusOK, h.summary(r.Context(), spouseID))
}

// Grandparents handles GET /api/people/{id}/grandparents.
func (h *FamilyHandlers) Grandparents(w http.ResponseWriter, r *http.Request) {
	h.respondHop(w, r, h.traversal.Grandparents)
}

// Grandchildren handles GET /api/people/{id}/grandchildren.
func (h *FamilyHandlers) Grandchildren(w http.ResponseWriter, r *http.Request) {
	h.respondHop(w, r, h.traversal.Grandchildren)
}

// AuntsAndUncles handles GET /api/people/{id}/aunts-uncles.
func (h *FamilyHandlers) AuntsAndUncles(w http.ResponseWriter, r *http.Request) {
	h.respondHop(w, r, h.traversal.AuntsAndUncles)
}

// NiecesAndNephews handles GET /api/people/{id}/nieces-nephews.
func (h *FamilyHandlers) NiecesAndNephews(w http.ResponseWriter, r *http.Request) {
	h.respondHop(w, r, h.traversal.NiecesAndNephews)
}

// Cousins handles GET /api/people/{id}/cousins.
func (h *FamilyHandlers) Cousins(w http.ResponseWriter, r *http.Request) {
	h.respondHop(w, r, h.traversal.Cousins)
}

// Ancestors handles GET /api/people/{id}/ancestors?generations=N. N of zero
// (the default) walks unbounded.
func (h *FamilyHandlers) Ancestors(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")
	generations := parseInt(r.URL.Query().Get("generations"), 0)

	ids, err := h.traversal.Ancestors(r.Context(), id, generations)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to query ancestors", err)
		return
	}
	h.respondPeople(w, r.Context(), ids)
}

// Descendants handles GET /api/people/{id}/descendants?generations=N.
func (h *FamilyHandlers) Descendants(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")
	generations := parseInt(r.URL.Query().Get("generations"), 0)

	ids, err := h.traversal.Descendants(r.Context(), id, generations)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to query descendants", err)
		return
	}
	h.respondPeople(w, r.Context(), ids)
}

// DirectFamily handles GET /api/people/{id}/family.
func (h *FamilyHandlers) DirectFamily(w http.ResponseWriter, r *http.Request) {
	h.respondHop(w, r, h.traversal.DirectFamily)
}

// AllConnectedFamily handles GET /api/people/{id}/family/all.
func (h *FamilyHandlers) AllConnectedFamily(w http.ResponseWriter, r *http.Request) {
	h.respondHop(w, r, h.traversal.AllConnectedFamily)
}

// RelatedTo handles GET /api/people/{id}/related-to/{other}?type=T.
func (h *FamilyHandlers) RelatedTo(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")
	other := extractID(r, "other")

	typeFilter, ok := typeFilterParam(r)
	if !ok {
		respondError(w, http.StatusUnprocessableEntity, "unknown relationship type", nil)
		return
	}

	related, err := h.traversal.RelatedTo(r.Context(), id, other, typeFilter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to query relatedness", err)
		return
	}
	respondJSON(w, http.StatusOK, RelatedResponse{Related: related})
}

// respondRole serves the single-hop role queries that accept a type filter.
func (h *FamilyHandlers) respondRole(w http.ResponseWriter, r *http.Request,
	query func(context.Context, string, *types.RelationType) ([]string, error)) {
	id := extractID(r, "id")

	typeFilter, ok := typeFilterParam(r)
	if !ok {
		respondError(w, http.StatusUnprocessableEntity, "unknown relationship type", nil)
		return
	}

	ids, err := query(r.Context(), id, typeFilter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to query relatives", err)
		return
	}
	h.respondPeople(w, r.Context(), ids)
}

// respondHop serves the queries that take only a person ID.
func (h *FamilyHandlers) respondHop(w http.ResponseWriter, r *http.Request,
	query func(context.Context, string) ([]string, error)) {
	id := extractID(r, "id")

	ids, err := query(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to query relatives", err)
		return
	}
	h.respondPeople(w, r.Context(), ids)
}

func (h *FamilyHandlers) respondPeople(w http.ResponseWriter, ctx context.Context, ids []string) {
	summaries := make([]PersonSummary, 0, len(ids))
	for _, id := range ids {
		summaries = append(summaries, h.summary(ctx, id))
	}
	respondJSON(w, http.StatusOK, PeopleResponse{People: summaries, Total: len(summaries)})
}

// summary resolves a display name, falling back to the bare ID when the
// directory cannot answer.
func (h *FamilyHandlers) summary(ctx context.Context, id string) PersonSummary {
	name, err := h.directory.DisplayName(ctx, id)
	if err != nil || name == "" {
		name = id
	}
	return PersonSummary{ID: id, Name: name}
}

// typeFilterParam reads the optional "type" query parameter. The second
// return is false when a value was supplied but is not a known type.
func typeFilterParam(r *http.Request) (*types.RelationType, bool) {
	raw := r.URL.Query().Get("type")
	if raw == "" {
		return nil, true
	}
	relType := types.RelationType(raw)
	if !relType.Valid() {
		return nil, false
	}
	return &relType, true
}
