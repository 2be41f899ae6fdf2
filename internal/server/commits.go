package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/seatwheel/seatwheel/internal/fingerprint"
	"github.com/seatwheel/seatwheel/internal/store"
)

// CommitLog is the read side of the commit archive.
type CommitLog interface {
	List() ([]store.Commit, error)
	Lookup(fp string) (store.Commit, error)
}

// commitsHandler returns every archived commit, oldest first.
func (s *Server) commitsHandler(w http.ResponseWriter, r *http.Request) {
	commits, err := s.opts.Archive.List()
	if err != nil {
		slog.Error("list commits failed", "error", err)
		http.Error(w, "archive unavailable", http.StatusInternalServerError)
		return
	}
	if commits == nil {
		commits = []store.Commit{}
	}
	writeJSON(w, commits)
}

// commitHandler looks up one commit by fingerprint. Malformed fingerprints
// are rejected before the archive is touched.
func (s *Server) commitHandler(w http.ResponseWriter, r *http.Request) {
	fp := chi.URLParam(r, "fingerprint")
	if _, err := fingerprint.Validate(fp); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	commit, err := s.opts.Archive.Lookup(fp)
	if errors.Is(err, store.ErrCommitNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("lookup commit failed", "fingerprint", fp, "error", err)
		http.Error(w, "archive unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, commit)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response failed", "error", err)
	}
}
