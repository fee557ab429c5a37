// Package server provides HTTP server initialization and lifecycle management
// for the Kindred API.
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/scrypster/kindred/internal/config"
	"github.com/scrypster/kindred/internal/directory"
	"github.com/scrypster/kindred/internal/kinship"
	"github.com/scrypster/kindred/internal/storage"
	"github.com/scrypster/kindred/web/handlers"
)

// Start initializes and starts the HTTP server. Returns the actual address
// being listened on (useful for testing with port 0) and the WebSocketHub for
// wiring event broadcasts.
func Start(ctx context.Context, cfg *config.Config, store storage.Store) (string, *handlers.WebSocketHub) {
	dir := buildDirectory(cfg, store)
	svc := kinship.NewService(store, dir)
	traversal := kinship.NewTraversal(store)

	hostPort := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	wsHub := handlers.NewWebSocketHub([]string{hostPort, "localhost:*", "127.0.0.1:*"})
	go wsHub.Run()

	rateLimiter := handlers.NewRateLimiter(10.0, 20)

	peopleHandlers := handlers.NewPeopleHandlers(store)
	relHandlers := handlers.NewRelationshipHandlers(svc, wsHub)
	familyHandlers := handlers.NewFamilyHandlers(traversal, dir)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/people", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			peopleHandlers.ListPeople(w, r)
		case http.MethodPost:
			peopleHandlers.CreatePerson(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("GET /api/people/{id}", peopleHandlers.GetPerson)

	mux.HandleFunc("/api/relationships", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			relHandlers.ListRelationships(w, r)
		case http.MethodPost:
			relHandlers.CreateRelationship(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("GET /api/relationships/pending", relHandlers.PendingReceived)
	mux.HandleFunc("GET /api/relationships/sent", relHandlers.PendingSent)
	mux.HandleFunc("/api/relationships/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			relHandlers.GetRelationship(w, r)
		case http.MethodPatch:
			relHandlers.UpdateRelationship(w, r)
		case http.MethodDelete:
			relHandlers.DeleteRelationship(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("POST /api/relationships/{id}/approve", relHandlers.ApproveRelationship)
	mux.HandleFunc("POST /api/relationships/{id}/reject", relHandlers.RejectRelationship)

	mux.HandleFunc("GET /api/people/{id}/parents", familyHandlers.Parents)
	mux.HandleFunc("GET /api/people/{id}/children", familyHandlers.Children)
	mux.HandleFunc("GET /api/people/{id}/siblings", familyHandlers.Siblings)
	mux.HandleFunc("GET /api/people/{id}/spouses", familyHandlers.Spouses)
	mux.HandleFunc("GET /api/people/{id}/current-spouse", familyHandlers.CurrentSpouse)
	mux.HandleFunc("GET /api/people/{id}/grandparents", familyHandlers.Grandparents)
	mux.HandleFunc("GET /api/people/{id}/grandchildren", familyHandlers.Grandchildren)
	mux.HandleFunc("GET /api/people/{id}/aunts-uncles", familyHandlers.AuntsAndUncles)
	mux.HandleFunc("GET /api/people/{id}/nieces-nephews", familyHandlers.NiecesAndNephews)
	mux.HandleFunc("GET /api/people/{id}/cousins", familyHandlers.Cousins)
	mux.HandleFunc("GET /api/people/{id}/ancestors", familyHandlers.Ancestors)
	mux.HandleFunc("GET /api/people/{id}/descendants", familyHandlers.Descendants)
	mux.HandleFunc("GET /api/people/{id}/family", familyHandlers.DirectFamily)
	mux.HandleFunc("GET /api/people/{id}/family/all", familyHandlers.AllConnectedFamily)
	mux.HandleFunc("GET /api/people/{id}/related-to/{other}", familyHandlers.RelatedTo)

	// Health endpoint, used by monitoring.
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","version":"1.0.0"}`))
	})

	// WebSocket endpoint; origin validation happens during the upgrade.
	mux.Handle("/ws", wsHub)

	// Wrap the whole server with rate limiting, then security headers.
	handler := handlers.RateLimitMiddleware(mux, rateLimiter)
	handler = handlers.SecurityHeadersMiddleware(handler)

	server := &http.Server{
		Addr:         hostPort,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	listener, err := net.Listen("tcp", hostPort)
	if err != nil {
		log.Fatalf("Failed to listen on %s: %v", hostPort, err)
	}

	actualAddr := listener.Addr().String()

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		wsHub.Stop()
	}()

	return actualAddr, wsHub
}

// buildDirectory picks the person directory implementation from config.
func buildDirectory(cfg *config.Config, store storage.Store) kinship.Directory {
	if cfg.Directory.Mode == "remote" && cfg.Directory.RemoteURL != "" {
		return directory.NewRemote(directory.RemoteConfig{BaseURL: cfg.Directory.RemoteURL})
	}
	return directory.NewLocal(store, store)
}
