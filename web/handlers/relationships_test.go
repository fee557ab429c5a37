package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/kindred/internal/directory"
	"github.com/scrypster/kindred/internal/kinship"
	"github.com/scrypster/kindred/internal/storage/sqlite"
	"github.com/scrypster/kindred/pkg/types"
)

// recordingBroadcaster captures broadcast events for assertions.
type recordingBroadcaster struct {
	events []RelationshipEvent
}

func (r *recordingBroadcaster) Broadcast(message interface{}) {
	if ev, ok := message.(RelationshipEvent); ok {
		r.events = append(r.events, ev)
	}
}

type handlerFixture struct {
	store  *sqlite.Store
	svc    *kinship.Service
	rel    *RelationshipHandlers
	people *PeopleHandlers
	events *recordingBroadcaster
}

func newFixture(t *testing.T) *handlerFixture {
	t.Helper()
	store, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc := kinship.NewService(store, directory.NewLocal(store, store))
	events := &recordingBroadcaster{}
	return &handlerFixture{
		store:  store,
		svc:    svc,
		rel:    NewRelationshipHandlers(svc, events),
		people: NewPeopleHandlers(store),
		events: events,
	}
}

func (f *handlerFixture) addPerson(t *testing.T, id, firstName string) {
	t.Helper()
	err := f.store.StorePerson(context.Background(), &types.Person{
		ID:        id,
		FirstName: firstName,
		Email:     firstName + "@example.com",
	})
	require.NoError(t, err)
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestCreateRelationship(t *testing.T) {
	f := newFixture(t)
	f.addPerson(t, "person:a", "Alice")
	f.addPerson(t, "person:b", "Bob")

	req := jsonRequest(t, http.MethodPost, "/api/relationships", CreateRelationshipRequest{
		SubjectID: "person:a",
		ObjectID:  "person:b",
		Type:      "parent",
	})
	req.Header.Set("X-Person-ID", "person:a")
	w := httptest.NewRecorder()

	f.rel.CreateRelationship(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var edge types.Edge
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &edge))
	assert.Equal(t, types.EdgeStatusPending, edge.Status)
	assert.Equal(t, "person:a", edge.InitiatorID)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, "relationship.created", f.events.events[0].Event)
	assert.Equal(t, edge.ID, f.events.events[0].EdgeID)
}

func TestCreateRelationshipErrors(t *testing.T) {
	f := newFixture(t)
	f.addPerson(t, "person:a", "Alice")
	f.addPerson(t, "person:b", "Bob")

	cases := []struct {
		name string
		body CreateRelationshipRequest
		code int
	}{
		{
			name: "self relation",
			body: CreateRelationshipRequest{SubjectID: "person:a", ObjectID: "person:a", Type: "sibling"},
			code: http.StatusUnprocessableEntity,
		},
		{
			name: "unknown type",
			body: CreateRelationshipRequest{SubjectID: "person:a", ObjectID: "person:b", Type: "nemesis"},
			code: http.StatusUnprocessableEntity,
		},
		{
			name: "unknown person",
			body: CreateRelationshipRequest{SubjectID: "person:a", ObjectID: "person:ghost", Type: "sibling"},
			code: http.StatusNotFound,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			f.rel.CreateRelationship(w, jsonRequest(t, http.MethodPost, "/api/relationships", tc.body))
			assert.Equal(t, tc.code, w.Code)
		})
	}

	// Duplicate is a conflict.
	w := httptest.NewRecorder()
	f.rel.CreateRelationship(w, jsonRequest(t, http.MethodPost, "/api/relationships", CreateRelationshipRequest{
		SubjectID: "person:a", ObjectID: "person:b", Type: "spouse",
	}))
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	f.rel.CreateRelationship(w, jsonRequest(t, http.MethodPost, "/api/relationships", CreateRelationshipRequest{
		SubjectID: "person:a", ObjectID: "person:b", Type: "spouse",
	}))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestApproveRelationship(t *testing.T) {
	f := newFixture(t)
	f.addPerson(t, "person:a", "Alice")
	f.addPerson(t, "person:b", "Bob")

	edge, err := f.svc.CreateEdge(context.Background(), kinship.CreateEdgeRequest{
		SubjectID: "person:a", ObjectID: "person:b", Type: types.RelationSpouse,
	})
	require.NoError(t, err)

	// The requester cannot approve.
	req := httptest.NewRequest(http.MethodPost, "/api/relationships/"+edge.ID+"/approve", nil)
	req.SetPathValue("id", edge.ID)
	req.Header.Set("X-Person-ID", "person:a")
	w := httptest.NewRecorder()
	f.rel.ApproveRelationship(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The recipient can.
	req = httptest.NewRequest(http.MethodPost, "/api/relationships/"+edge.ID+"/approve", nil)
	req.SetPathValue("id", edge.ID)
	req.Header.Set("X-Person-ID", "person:b")
	w = httptest.NewRecorder()
	f.rel.ApproveRelationship(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var approved types.Edge
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &approved))
	assert.Equal(t, types.EdgeStatusApproved, approved.Status)

	// Deciding again conflicts.
	req = httptest.NewRequest(http.MethodPost, "/api/relationships/"+edge.ID+"/reject", nil)
	req.SetPathValue("id", edge.ID)
	req.Header.Set("X-Person-ID", "person:b")
	w = httptest.NewRecorder()
	f.rel.RejectRelationship(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)

	require.NotEmpty(t, f.events.events)
	assert.Equal(t, "relationship.approved", f.events.events[len(f.events.events)-1].Event)
}

func TestDecideRequiresActingPerson(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/relationships/edge:x/approve", nil)
	req.SetPathValue("id", "edge:x")
	w := httptest.NewRecorder()
	f.rel.ApproveRelationship(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteRelationship(t *testing.T) {
	f := newFixture(t)
	f.addPerson(t, "person:a", "Alice")
	f.addPerson(t, "person:b", "Bob")

	edge, err := f.svc.CreateEdge(context.Background(), kinship.CreateEdgeRequest{
		SubjectID: "person:a", ObjectID: "person:b", Type: types.RelationSibling,
	})
	require.NoError(t, err)

	// An outsider cannot delete.
	req := httptest.NewRequest(http.MethodDelete, "/api/relationships/"+edge.ID, nil)
	req.SetPathValue("id", edge.ID)
	req.Header.Set("X-Person-ID", "person:outsider")
	w := httptest.NewRecorder()
	f.rel.DeleteRelationship(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// A participant can.
	req = httptest.NewRequest(http.MethodDelete, "/api/relationships/"+edge.ID, nil)
	req.SetPathValue("id", edge.ID)
	req.Header.Set("X-Person-ID", "person:b")
	w = httptest.NewRecorder()
	f.rel.DeleteRelationship(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, "relationship.deleted", f.events.events[len(f.events.events)-1].Event)
}

func TestPendingViews(t *testing.T) {
	f := newFixture(t)
	f.addPerson(t, "person:a", "Alice")
	f.addPerson(t, "person:b", "Bob")

	_, err := f.svc.CreateEdge(context.Background(), kinship.CreateEdgeRequest{
		SubjectID: "person:a", ObjectID: "person:b", Type: types.RelationSpouse,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/relationships/pending", nil)
	req.Header.Set("X-Person-ID", "person:b")
	w := httptest.NewRecorder()
	f.rel.PendingReceived(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp EdgesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)

	req = httptest.NewRequest(http.MethodGet, "/api/relationships/sent", nil)
	req.Header.Set("X-Person-ID", "person:a")
	w = httptest.NewRecorder()
	f.rel.PendingSent(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	resp = EdgesResponse{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)

	// The views require identification.
	w = httptest.NewRecorder()
	f.rel.PendingReceived(w, httptest.NewRequest(http.MethodGet, "/api/relationships/pending", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateAndGetPerson(t *testing.T) {
	f := newFixture(t)

	req := jsonRequest(t, http.MethodPost, "/api/people", CreatePersonRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
	})
	w := httptest.NewRecorder()
	f.people.CreatePerson(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var person types.Person
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &person))
	assert.NotEmpty(t, person.ID)

	getReq := httptest.NewRequest(http.MethodGet, "/api/people/"+person.ID, nil)
	getReq.SetPathValue("id", person.ID)
	w = httptest.NewRecorder()
	f.people.GetPerson(w, getReq)
	require.Equal(t, http.StatusOK, w.Code)

	// Email is mandatory.
	w = httptest.NewRecorder()
	f.people.CreatePerson(w, jsonRequest(t, http.MethodPost, "/api/people", CreatePersonRequest{FirstName: "NoEmail"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
