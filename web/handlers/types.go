package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/scrypster/kindred/pkg/types"
)

// ErrorResponse is the standard error response format for the API.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// PersonSummary is the hydrated form query endpoints return for each related
// person: enough to render a list without a second round trip.
type PersonSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PeopleResponse wraps a list of person summaries.
type PeopleResponse struct {
	People []PersonSummary `json:"people"`
	Total  int             `json:"total"`
}

// EdgesResponse wraps a list of edges.
type EdgesResponse struct {
	Edges []types.Edge `json:"edges"`
	Total int          `json:"total"`
}

// RelatedResponse is the response for related-to checks.
type RelatedResponse struct {
	Related bool `json:"related"`
}

// CreatePersonRequest is the request body for POST /api/people.
type CreatePersonRequest struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email"`
	Gender    string `json:"gender,omitempty"`
	Bio       string `json:"bio,omitempty"`

	Birthday *time.Time `json:"birthday,omitempty"`
	DateDied *time.Time `json:"date_died,omitempty"`

	CityBorn     string `json:"city_born,omitempty"`
	StateBorn    string `json:"state_born,omitempty"`
	CityCurrent  string `json:"city_current,omitempty"`
	StateCurrent string `json:"state_current,omitempty"`
}

// CreateRelationshipRequest is the request body for POST /api/relationships.
type CreateRelationshipRequest struct {
	SubjectID string `json:"subject_id"`
	ObjectID  string `json:"object_id"`
	Type      string `json:"type"`

	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Notes     string     `json:"notes,omitempty"`
}

// UpdateRelationshipRequest is the request body for PATCH
// /api/relationships/{id}. Status is not editable through this endpoint.
type UpdateRelationshipRequest struct {
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Notes     string     `json:"notes,omitempty"`
}

// actingPerson returns the caller's person ID from the X-Person-ID header.
// Authentication is out of scope; the header is trusted as-is.
func actingPerson(r *http.Request) string {
	return r.Header.Get("X-Person-ID")
}

// extractID extracts a path parameter from the request.
func extractID(r *http.Request, key string) string {
	return r.PathValue(key)
}

// parseInt parses an integer from a string, returning defaultValue if parsing
// fails.
func parseInt(s string, defaultValue int) int {
	if s == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return val
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers already sent; nothing left to do but log.
		log.Printf("handlers: failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response with the given status code.
func respondError(w http.ResponseWriter, statusCode int, message string, err error) {
	errResp := ErrorResponse{
		Error: message,
		Code:  http.StatusText(statusCode),
	}

	if err != nil {
		errResp.Details = map[string]interface{}{
			"error": err.Error(),
		}
	}

	respondJSON(w, statusCode, errResp)
}
