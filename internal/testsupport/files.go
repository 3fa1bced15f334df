package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"syncorbit/internal/config"
)

// srtStub is a minimal valid SubRip document.
const srtStub = "1\n00:00:01,000 --> 00:00:02,500\nhello\n\n2\n00:00:10,000 --> 00:00:12,000\nworld\n"

// WriteMovie lays out a movie directory under the config's media root with a
// video container and the named subtitle tracks.
func WriteMovie(t testing.TB, cfg *config.Config, movie string, subtitles ...string) string {
	t.Helper()

	dir := filepath.Join(cfg.Paths.MediaRoot, movie)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir movie %s: %v", movie, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "feature.mkv"), []byte("mkv"), 0o644); err != nil {
		t.Fatalf("write video: %v", err)
	}
	for _, name := range subtitles {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(srtStub), 0o644); err != nil {
			t.Fatalf("write subtitle %s: %v", name, err)
		}
	}
	return dir
}
