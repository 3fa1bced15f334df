package scan

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"syncorbit/internal/arbiter"
	"syncorbit/internal/services"
	"syncorbit/internal/services/ffsubsync"
	"syncorbit/internal/services/whisperx"
)

var videoExtensions = map[string]struct{}{
	".mkv":  {},
	".mp4":  {},
	".m4v":  {},
	".avi":  {},
	".mov":  {},
	".webm": {},
}

// mediaItem is everything discovery learned about one movie directory.
type mediaItem struct {
	Movie       string
	Dir         string
	VideoPath   string
	TargetPath  string
	TargetMtime time.Time
	ENPath      string
	ENMtime     time.Time
}

// discoverMovies enumerates movie directories under the media root in
// lexical order.
func discoverMovies(mediaRoot string) ([]string, error) {
	entries, err := os.ReadDir(mediaRoot)
	if err != nil {
		return nil, services.Wrap(services.ErrCollaborator, "scan", "discover", "read media root", err)
	}
	var movies []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		movies = append(movies, entry.Name())
	}
	sort.Strings(movies)
	return movies, nil
}

// inspectItem examines one movie directory for the video file, the
// target-language subtitle, and an original-language subtitle. The first
// match in lexical order wins for each role.
func inspectItem(mediaRoot, movie string, targetLanguages []string) (mediaItem, error) {
	item := mediaItem{Movie: movie, Dir: filepath.Join(mediaRoot, movie)}
	entries, err := os.ReadDir(item.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return item, services.Wrap(services.ErrNotFound, "scan", "inspect", movie, err)
		}
		return item, services.Wrap(services.ErrCollaborator, "scan", "inspect", movie, err)
	}

	names := make([]string, 0, len(entries))
	byName := make(map[string]os.DirEntry, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
		byName[entry.Name()] = entry
	}
	sort.Strings(names)

	for _, name := range names {
		lower := strings.ToLower(name)
		ext := filepath.Ext(lower)
		switch {
		case item.VideoPath == "" && isVideoExt(ext):
			item.VideoPath = filepath.Join(item.Dir, name)
		case ext == ".srt":
			tag := languageTag(lower)
			if item.TargetPath == "" && matchesLanguage(tag, targetLanguages) {
				item.TargetPath = filepath.Join(item.Dir, name)
				if info, err := byName[name].Info(); err == nil {
					item.TargetMtime = info.ModTime()
				}
			}
			if item.ENPath == "" && matchesLanguage(tag, []string{"en", "eng"}) {
				item.ENPath = filepath.Join(item.Dir, name)
				if info, err := byName[name].Info(); err == nil {
					item.ENMtime = info.ModTime()
				}
			}
		}
	}
	return item, nil
}

func isVideoExt(ext string) bool {
	_, ok := videoExtensions[ext]
	return ok
}

// languageTag extracts the trailing language token of a subtitle filename:
// "movie.fi.srt" -> "fi", "movie-eng.srt" -> "eng".
func languageTag(lowerName string) string {
	base := strings.TrimSuffix(lowerName, ".srt")
	cut := strings.LastIndexAny(base, ".-_ ")
	if cut < 0 {
		return ""
	}
	return base[cut+1:]
}

func matchesLanguage(tag string, languages []string) bool {
	if tag == "" {
		return false
	}
	for _, lang := range languages {
		if tag == lang {
			return true
		}
	}
	return false
}

// collectCandidates gathers every reference track eligible to serve as
// ground truth for the item: the transcription reference, the newest
// corrected track in the resync directory, and an original-language
// subtitle shipped with the media.
func collectCandidates(refRoot, resyncRoot string, item mediaItem) []arbiter.Candidate {
	var candidates []arbiter.Candidate

	refPath := whisperx.ReferencePath(refRoot, item.Movie)
	if info, err := os.Stat(refPath); err == nil && !info.IsDir() {
		candidates = append(candidates, arbiter.Candidate{
			Kind:       arbiter.KindWhisper,
			Path:       refPath,
			ProducedAt: info.ModTime(),
		})
	}

	if path, mtime, ok := newestSyncedTrack(filepath.Join(resyncRoot, item.Movie)); ok {
		candidates = append(candidates, arbiter.Candidate{
			Kind:       arbiter.KindFFsync,
			Path:       path,
			ProducedAt: mtime,
		})
	}

	if item.ENPath != "" {
		candidates = append(candidates, arbiter.Candidate{
			Kind:       arbiter.KindEN,
			Path:       item.ENPath,
			ProducedAt: item.ENMtime,
		})
	}
	return candidates
}

func newestSyncedTrack(dir string) (string, time.Time, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", time.Time{}, false
	}
	var (
		bestPath  string
		bestMtime time.Time
	)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ffsubsync.SyncedSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if bestPath == "" || info.ModTime().After(bestMtime) {
			bestPath = filepath.Join(dir, entry.Name())
			bestMtime = info.ModTime()
		}
	}
	return bestPath, bestMtime, bestPath != ""
}
