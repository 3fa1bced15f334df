package daemon

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"syncorbit/internal/api"
)

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	payload, err := s.librarySvc.Status(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	status := s.daemon.Status()
	payload.Running = status.Running
	payload.PID = status.PID
	payload.DatabasePath = status.DatabasePath
	payload.LockFilePath = status.LockFilePath
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *apiServer) handleLibrary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	resp, err := s.librarySvc.List(r.Context(), api.ListQuery{
		Decision: strings.TrimSpace(query.Get("decision")),
		State:    strings.TrimSpace(query.Get("state")),
		Sort:     strings.TrimSpace(query.Get("sort")),
		Limit:    limit,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleLibraryMovie serves /api/library/{movie} and
// /api/library/{movie}/reanalyze.
func (s *apiServer) handleLibraryMovie(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/library/")
	movie, action, _ := strings.Cut(rest, "/")
	decoded, err := url.PathUnescape(movie)
	if err != nil || decoded == "" {
		s.writeError(w, http.StatusNotFound, "movie not found", "not_found")
		return
	}

	switch action {
	case "":
		if r.Method != http.MethodGet {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
			return
		}
		detail, err := s.librarySvc.Describe(r.Context(), decoded)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.MovieResponse{Movie: detail})
	case "reanalyze":
		if r.Method != http.MethodPost {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
			return
		}
		forced := r.URL.Query().Get("force") == "1" || strings.EqualFold(r.URL.Query().Get("force"), "true")
		summary, err := s.librarySvc.Reanalyze(r.Context(), decoded, forced)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, summary)
	default:
		s.writeError(w, http.StatusNotFound, "unknown action", "not_found")
	}
}

func (s *apiServer) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	if err := s.librarySvc.StartRescan(r.Context()); err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, s.librarySvc.Progress())
}

func (s *apiServer) handleScanProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	s.writeJSON(w, http.StatusOK, s.librarySvc.Progress())
}

type bulkRequest struct {
	Movies []string `json:"movies"`
}

func (s *apiServer) handleBulk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	action := strings.TrimPrefix(r.URL.Path, "/api/bulk/")
	var req bulkRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	if len(req.Movies) == 0 {
		s.writeError(w, http.StatusBadRequest, "movies list required", "")
		return
	}

	var resp api.BulkResponse
	switch action {
	case "ignore":
		resp = s.librarySvc.BulkIgnore(r.Context(), req.Movies)
	case "unignore":
		resp = s.librarySvc.BulkUnignore(r.Context(), req.Movies)
	case "reference":
		resp = s.librarySvc.BulkRequestReference(r.Context(), req.Movies)
	case "resync":
		resp = s.librarySvc.BulkResync(r.Context(), req.Movies)
	default:
		s.writeError(w, http.StatusNotFound, "unknown bulk action", "not_found")
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]api.JobStatus{"jobs": s.librarySvc.Jobs()})
}

func (s *apiServer) handleJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	if id == "" || strings.Contains(id, "/") {
		s.writeError(w, http.StatusNotFound, "job not found", "not_found")
		return
	}
	job, err := s.librarySvc.Job(id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, job)
}
