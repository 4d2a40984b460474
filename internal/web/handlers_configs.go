package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/flatbridge/internal/core"
)

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context(), core.UserIDFromContext(r.Context()))
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"configs": nonNil(configs)})
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	var in core.SavedConfigInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	cfg, err := s.service.CreateConfig(r.Context(), core.UserIDFromContext(r.Context()), in)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusCreated, cfg)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.service.GetConfig(r.Context(), core.UserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var in core.SavedConfigInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	cfg, err := s.service.UpdateConfig(r.Context(), core.UserIDFromContext(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleDeleteConfig(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteConfig(r.Context(), core.UserIDFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
