package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/flatbridge/internal/core"
	"github.com/JonMunkholm/flatbridge/internal/schema"
	"github.com/JonMunkholm/flatbridge/internal/web/templates"
)

// handleIngest runs a transfer. A transfer that ran always answers 200 with
// the IngestionResult, successful or not; errors are reserved for transfers
// that could not start. The job id is returned in X-Job-ID.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeRequest(w, r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	dir, err := schema.ParseDirection(req.Direction)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	ctx := withRequestMetadata(r.Context(), r)
	job, result, err := s.service.Transfer(ctx, core.UserIDFromContext(ctx), core.TransferRequest{
		Direction: dir,
		Source:    req.Source,
		File:      req.file,
		Table:     req.Table,
		Selected:  req.Selected,
	})
	if err != nil {
		if core.MapError(err).Code == "XFR001" {
			w.Header().Set("Retry-After", "5")
		}
		s.respondError(w, r, err, 0)
		return
	}

	w.Header().Set("X-Job-ID", job.ID)
	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := templates.ResultAlert(result).Render(r.Context(), w); err != nil {
			s.respondError(w, r, err, http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleTransferStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.TransferStatus())
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", core.DefaultJobListLimit)

	jobs, err := s.service.ListJobs(r.Context(), core.UserIDFromContext(r.Context()), limit)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": nonNil(jobs)})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.service.GetJob(r.Context(), core.UserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, job)
}
