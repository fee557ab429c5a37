package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/scrypster/kindred/internal/storage"
	"github.com/scrypster/kindred/pkg/types"
)

// PeopleHandlers contains the HTTP handlers for person records.
type PeopleHandlers struct {
	people storage.PersonStore
}

// NewPeopleHandlers creates handlers over the given person store.
func NewPeopleHandlers(people storage.PersonStore) *PeopleHandlers {
	return &PeopleHandlers{people: people}
}

// CreatePerson handles POST /api/people.
func (h *PeopleHandlers) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var req CreatePersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Email == "" {
		respondError(w, http.StatusBadRequest, "email is required", nil)
		return
	}

	person := &types.Person{
		ID:           newPersonID(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Gender:       req.Gender,
		Bio:          req.Bio,
		Birthday:     req.Birthday,
		DateDied:     req.DateDied,
		CityBorn:     req.CityBorn,
		StateBorn:    req.StateBorn,
		CityCurrent:  req.CityCurrent,
		StateCurrent: req.StateCurrent,
	}

	if err := h.people.StorePerson(r.Context(), person); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to store person", err)
		return
	}

	respondJSON(w, http.StatusCreated, person)
}

// GetPerson handles GET /api/people/{id}.
func (h *PeopleHandlers) GetPerson(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "person ID is required", nil)
		return
	}

	person, err := h.people.GetPerson(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "person not found", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get person", err)
		return
	}

	respondJSON(w, http.StatusOK, person)
}

// ListPeople handles GET /api/people.
func (h *PeopleHandlers) ListPeople(w http.ResponseWriter, r *http.Request) {
	people, err := h.people.ListPeople(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list people", err)
		return
	}

	summaries := make([]PersonSummary, 0, len(people))
	for i := range people {
		summaries = append(summaries, PersonSummary{
			ID:   people[i].ID,
			Name: people[i].DisplayName(),
		})
	}
	respondJSON(w, http.StatusOK, PeopleResponse{People: summaries, Total: len(summaries)})
}

// newPersonID generates a unique person identifier.
func newPersonID() string {
	return "person:" + uuid.NewString()
}
