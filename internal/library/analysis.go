package library

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"syncorbit/internal/anchors"
	"syncorbit/internal/arbiter"
	"syncorbit/internal/services"
)

const analysisFileName = "analysis.syncinfo"

// AnalysisDocument is the sidecar written after a successful alignment. It
// carries everything a rescan needs to reuse the verdict without re-running
// the aligner.
type AnalysisDocument struct {
	Movie         string           `json:"movie"`
	BestReference arbiter.Kind     `json:"best_reference"`
	ReferencePath string           `json:"reference_path"`
	TargetPath    string           `json:"target_path"`
	GeneratedAt   time.Time        `json:"generated_at"`
	Analysis      anchors.Analysis `json:"analysis"`
}

// AnalysisPath returns where the sidecar for movie lives.
func (s *Store) AnalysisPath(movie string) string {
	return filepath.Join(s.analysisRoot, movie, analysisFileName)
}

// SaveAnalysis writes the sidecar atomically so a crashed writer never
// leaves a truncated document behind.
func (s *Store) SaveAnalysis(movie string, doc AnalysisDocument) error {
	movie = strings.TrimSpace(movie)
	if movie == "" {
		return services.Wrap(services.ErrCorrupt, "library", "save analysis", "movie name is required", nil)
	}
	doc.Movie = movie
	if doc.GeneratedAt.IsZero() {
		doc.GeneratedAt = time.Now().UTC()
	}

	path := s.AnalysisPath(movie)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return services.Wrap(services.ErrCorrupt, "library", "save analysis", "create analysis directory", err)
	}
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrCorrupt, "library", "save analysis", "encode document", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return services.Wrap(services.ErrCorrupt, "library", "save analysis", "write document", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return services.Wrap(services.ErrCorrupt, "library", "save analysis", "finalize document", err)
	}
	return nil
}

// LoadAnalysis reads the sidecar for movie. A missing sidecar returns nil
// without error; a present but undecodable one returns a corrupt error.
func (s *Store) LoadAnalysis(movie string) (*AnalysisDocument, error) {
	movie = strings.TrimSpace(movie)
	if movie == "" {
		return nil, services.Wrap(services.ErrCorrupt, "library", "load analysis", "movie name is required", nil)
	}
	payload, err := os.ReadFile(s.AnalysisPath(movie))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrCorrupt, "library", "load analysis", "read document", err)
	}
	var doc AnalysisDocument
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, services.Wrap(services.ErrCorrupt, "library", "load analysis", fmt.Sprintf("decode document for %q", movie), err)
	}
	return &doc, nil
}

// AnalysisModTime reports when the sidecar for movie was last written.
func (s *Store) AnalysisModTime(movie string) (time.Time, bool) {
	info, err := os.Stat(s.AnalysisPath(movie))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}
