// Package mockserver is the alternate, unauthenticated backend the client
// talks to during development. It stores whole list documents (items
// embedded) and replaces a document wholesale on PUT.
//
//	GET    /shoppingLists       → every list, items embedded
//	POST   /shoppingLists       → create a list document
//	PUT    /shoppingLists/{id}  → replace a list document
//	DELETE /shoppingLists/{id}  → delete a list and its items
//
// Documents are kept in any repository.Store, so the mock can run in memory
// or against the sqlite file used by the primary backend.
package mockserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/shopping-list/internal/apperror"
	"github.com/sakif/shopping-list/internal/handler"
	"github.com/sakif/shopping-list/internal/middleware"
	"github.com/sakif/shopping-list/internal/model"
	"github.com/sakif/shopping-list/internal/repository"
)

// Server serves list documents over REST.
type Server struct {
	docs   *Documents
	logger *slog.Logger
}

// New creates a mock server over store.
func New(store repository.Store, logger *slog.Logger) *Server {
	return &Server{docs: NewDocuments(store), logger: logger}
}

// Routes returns the mock server's router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logger(s.logger))

	r.Route("/shoppingLists", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Put("/{id}", s.handleReplace)
		r.Delete("/{id}", s.handleDelete)
	})
	return r
}

// Seed stores the sample lists. It is meant for an empty store.
func (s *Server) Seed(ctx context.Context) error {
	for _, doc := range SampleLists() {
		if _, err := s.docs.Create(ctx, doc); err != nil {
			return fmt.Errorf("seeding %q: %w", doc.Name, err)
		}
	}
	s.logger.Info("mock server seeded", slog.Int("lists", len(SampleLists())))
	return nil
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	docs, err := s.docs.All(r.Context())
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, docs)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	doc, err := decodeDocument(w, r)
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	created, err := s.docs.Create(r.Context(), doc)
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteJSON(w, http.StatusCreated, created)
}

func (s *Server) handleReplace(w http.ResponseWriter, r *http.Request) {
	doc, err := decodeDocument(w, r)
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	doc.ID = chi.URLParam(r, "id")
	replaced, err := s.docs.Replace(r.Context(), doc)
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, replaced)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.docs.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handler.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeDocument(w http.ResponseWriter, r *http.Request) (model.ShoppingList, error) {
	var doc model.ShoppingList
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&doc); err != nil {
		return doc, apperror.ValidationFailed("body", "request body must be a shopping list document")
	}
	doc.Name = strings.TrimSpace(doc.Name)
	if doc.Name == "" {
		return doc, apperror.ValidationFailed("name", "list name is required")
	}
	return doc, nil
}
