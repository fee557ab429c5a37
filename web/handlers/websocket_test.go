package handlers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubBroadcastsToClients(t *testing.T) {
	hub := NewWebSocketHub(nil)
	go hub.Run()
	defer hub.Stop()

	client := &MockClient{SendChan: make(chan []byte, 1)}
	hub.Register(client)

	hub.Broadcast(RelationshipEvent{
		Event:  "relationship.created",
		EdgeID: "edge:1",
		Status: "pending",
	})

	select {
	case data := <-client.SendChan:
		var ev RelationshipEvent
		require.NoError(t, json.Unmarshal(data, &ev))
		assert.Equal(t, "relationship.created", ev.Event)
		assert.Equal(t, "edge:1", ev.EdgeID)
	case <-time.After(2 * time.Second):
		t.Fatal("no broadcast received")
	}
}

func TestHubDropsSlowClients(t *testing.T) {
	hub := NewWebSocketHub(nil)
	go hub.Run()
	defer hub.Stop()

	// Zero-capacity channel: the client can never accept a message.
	slow := &MockClient{SendChan: make(chan []byte)}
	hub.Register(slow)

	hub.Broadcast(RelationshipEvent{Event: "relationship.created"})

	// The slow client's channel is closed when it gets dropped.
	select {
	case _, open := <-slow.SendChan:
		assert.False(t, open, "slow client channel should be closed")
	case <-time.After(2 * time.Second):
		t.Fatal("slow client was not dropped")
	}
}

func TestHubUnregister(t *testing.T) {
	hub := NewWebSocketHub(nil)
	go hub.Run()
	defer hub.Stop()

	client := &MockClient{SendChan: make(chan []byte, 1)}
	hub.Register(client)
	hub.Unregister(client)

	select {
	case _, open := <-client.SendChan:
		assert.False(t, open, "channel should be closed on unregister")
	case <-time.After(2 * time.Second):
		t.Fatal("unregister did not close the send channel")
	}
}
