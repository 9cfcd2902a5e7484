package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gogpu/studio/document"
	"github.com/gogpu/studio/store"
)

func (s *Server) handleListLibrary(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.LibraryItems(r.Context(), r.URL.Query().Get("tag"))
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []store.LibraryItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// handleAddLibrary stores a snapshot body as a reusable element. Name and
// comma-separated tags come from the query string.
func (s *Server) handleAddLibrary(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := document.Deserialize(body); err != nil {
		writeError(w, err)
		return
	}
	q := r.URL.Query()
	if strings.TrimSpace(q.Get("name")) == "" {
		writeError(w, badRequest{errors.New("api: library item needs a name")})
		return
	}
	var tags []string
	if v := q.Get("tags"); v != "" {
		tags = strings.Split(v, ",")
	}
	item, err := s.store.AddLibraryItem(r.Context(), q.Get("name"), tags, body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleGetLibrary(w http.ResponseWriter, r *http.Request) {
	item, err := s.store.LibraryItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(item.Payload)
}

func (s *Server) handleDeleteLibrary(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteLibraryItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
