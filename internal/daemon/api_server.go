package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"syncorbit/internal/api"
	"syncorbit/internal/config"
	"syncorbit/internal/logging"
	"syncorbit/internal/services"
)

type apiServer struct {
	bind       string
	token      string
	logger     *slog.Logger
	daemon     *Daemon
	librarySvc *api.LibraryService

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, errors.New("api bind address required")
	}

	srv := &apiServer{
		bind:       bind,
		token:      strings.TrimSpace(cfg.Paths.APIToken),
		logger:     logging.NewComponentLogger(logger, "api-server"),
		daemon:     d,
		librarySvc: api.NewLibraryService(d.store, d.scanner, cfg.Analysis.CurveDensity),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", srv.authed(srv.handleStatus))
	mux.HandleFunc("/api/library", srv.authed(srv.handleLibrary))
	mux.HandleFunc("/api/library/", srv.authed(srv.handleLibraryMovie))
	mux.HandleFunc("/api/scan", srv.authed(srv.handleScan))
	mux.HandleFunc("/api/scan/progress", srv.authed(srv.handleScanProgress))
	mux.HandleFunc("/api/bulk/", srv.authed(srv.handleBulk))
	mux.HandleFunc("/api/jobs", srv.authed(srv.handleJobs))
	mux.HandleFunc("/api/jobs/", srv.authed(srv.handleJob))

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

// authed validates the optional bearer token. A blank configured token
// disables authentication.
func (s *apiServer) authed(next http.HandlerFunc) http.HandlerFunc {
	if s.token == "" {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != s.token {
			s.writeError(w, http.StatusUnauthorized, "unauthorized", "")
			return
		}
		next(w, r)
	}
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message, kind string) {
	s.writeJSON(w, status, map[string]string{"error": message, "kind": kind})
}

// writeServiceError maps the error taxonomy onto HTTP statuses.
func (s *apiServer) writeServiceError(w http.ResponseWriter, err error) {
	kind := services.Kind(err)
	status := http.StatusInternalServerError
	switch kind {
	case "not_found":
		status = http.StatusNotFound
	case "ineligible":
		status = http.StatusUnprocessableEntity
	case "conflict":
		status = http.StatusConflict
	case "collaborator_failure":
		status = http.StatusBadGateway
	}
	s.writeError(w, status, err.Error(), kind)
}
