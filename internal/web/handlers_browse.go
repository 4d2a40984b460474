package web

// handlers_browse.go serves the read-only discovery endpoints: list tables,
// describe columns and preview rows, for both the source database and an
// uploaded flat file.

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/flatbridge/internal/schema"
)

func (s *Server) handleSourceTables(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeRequest(w, r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	tables, err := s.service.SourceTables(r.Context(), req.Source)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tables": nonNil(tables)})
}

func (s *Server) handleSourceColumns(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeRequest(w, r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	if err := requireTable(req.Table); err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	cols, err := s.service.SourceColumns(r.Context(), req.Source, req.Table)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"columns": nonNil(cols)})
}

func (s *Server) handleSourcePreview(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeRequest(w, r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	if err := requireTable(req.Table); err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	rows, err := s.service.SourcePreview(r.Context(), req.Source, req.Table, req.Selected)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"preview": nonNilRows(rows)})
}

func (s *Server) handleFileTables(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeRequest(w, r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tables": nonNil(s.service.FileTables(req.file))})
}

func (s *Server) handleFileColumns(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeRequest(w, r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	cols, err := s.service.FileColumns(req.file)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"columns": nonNil(cols)})
}

func (s *Server) handleFilePreview(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeRequest(w, r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	rows, err := s.service.FilePreview(req.file, req.Selected)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"preview": nonNilRows(rows)})
}

func requireTable(table string) error {
	if strings.TrimSpace(table) == "" {
		return fmt.Errorf("table is required")
	}
	return nil
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func nonNilRows(rows schema.RowSet) schema.RowSet {
	if rows == nil {
		return schema.RowSet{}
	}
	return rows
}
