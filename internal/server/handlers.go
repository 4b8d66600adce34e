package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"courtsim/internal/catalog"
	"courtsim/internal/progress"
	"courtsim/internal/store"
)

// maxBodySize caps JSON request bodies.
const maxBodySize = 1 << 20

// decodeBody parses the request body as JSON into v. An empty or malformed
// body leaves v at its zero value, so clients sending garbage get the same
// behavior as sending an empty object.
func decodeBody(r *http.Request, v any) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil || len(data) == 0 {
		return
	}
	_ = json.Unmarshal(data, v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeStoreError maps store errors onto HTTP statuses.
func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	s.log.Error("store operation failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.log.Error("health check failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "database unreachable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	payload := s.options.Fetch(r.Context())
	if payload.Options == nil {
		payload.Options = []catalog.ScenarioOption{}
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleListProgress(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.ListProgress(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	if recs == nil {
		recs = []progress.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleCreateProgress(w http.ResponseWriter, r *http.Request) {
	var rec progress.Record
	decodeBody(r, &rec)

	created, err := s.store.CreateProgress(r.Context(), rec)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.GetProgress(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	var rec progress.Record
	decodeBody(r, &rec)

	updated, err := s.store.UpdateProgress(r.Context(), r.PathValue("id"), rec)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteProgress(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteProgress(r.Context(), r.PathValue("id")); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleListOutput(w http.ResponseWriter, r *http.Request) {
	outs, err := s.store.ListOutput(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	if outs == nil {
		outs = []store.Output{}
	}
	writeJSON(w, http.StatusOK, outs)
}

func (s *Server) handleCreateOutput(w http.ResponseWriter, r *http.Request) {
	var o store.Output
	decodeBody(r, &o)

	created, err := s.store.CreateOutput(r.Context(), o)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetOutput(w http.ResponseWriter, r *http.Request) {
	o, err := s.store.GetOutput(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleUpdateOutput(w http.ResponseWriter, r *http.Request) {
	var o store.Output
	decodeBody(r, &o)

	updated, err := s.store.UpdateOutput(r.Context(), r.PathValue("id"), o)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteOutput(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteOutput(r.Context(), r.PathValue("id")); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
