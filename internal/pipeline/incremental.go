package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/noralyzer/noralyzer/internal/source"
	"github.com/noralyzer/noralyzer/internal/store"
)

// CachedLoadResult extends LoadResult with cache metadata.
type CachedLoadResult struct {
	LoadResult
	CacheHits int
	Reparsed  int
	Pruned    int
}

// LoadWithCache discovers journals, diffs them against the cache, parses
// only changed files and merges everything into a snapshot.
func LoadWithCache(dataDir string, cache *store.Cache, progressFn ProgressFunc) (*CachedLoadResult, error) {
	files, err := source.ScanDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dataDir, err)
	}

	tracked, err := cache.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	result := &CachedLoadResult{LoadResult: LoadResult{TotalFiles: len(files)}}

	// Diff: partition into changed and unchanged
	stamps := statFiles(files)
	stampByPath := make(map[string]fileStamp, len(stamps))
	for _, s := range stamps {
		stampByPath[s.Path] = s
	}

	var toReparse []source.DiscoveredFile
	var unchanged []string
	present := make(map[string]struct{}, len(files))

	for _, f := range files {
		present[f.Path] = struct{}{}
		st, ok := stampByPath[f.Path]
		if !ok {
			result.FileErrors++
			continue
		}
		cached, ok := tracked[f.Path]
		if ok && cached.MtimeNs == st.MtimeNs && cached.SizeBytes == st.Size {
			unchanged = append(unchanged, f.Path)
			result.ParseErrors += cached.ParseErrors
		} else {
			toReparse = append(toReparse, f)
		}
	}

	// Journals removed from disk
	for path := range tracked {
		if _, ok := present[path]; ok {
			continue
		}
		if err := cache.DeleteFile(path); err != nil {
			return nil, fmt.Errorf("pruning cache: %w", err)
		}
		result.Pruned++
	}

	result.CacheHits = len(unchanged)
	result.Reparsed = len(toReparse)

	byPath, err := cache.LoadRecords(unchanged)
	if err != nil {
		return nil, fmt.Errorf("loading cached records: %w", err)
	}
	result.ParsedFiles += len(unchanged)

	parsed := parseAll(toReparse, func(n int) {
		if progressFn != nil {
			progressFn(n+result.CacheHits, result.TotalFiles)
		}
	})

	for _, pr := range parsed {
		if pr.Err != nil {
			result.FileErrors++
			slog.Warn("journal unreadable", "path", pr.File.Path, "error", pr.Err)
			continue
		}
		result.collect(pr)
		byPath[pr.File.Path] = pr.Records

		st := stampByPath[pr.File.Path]
		fi := store.FileInfo{MtimeNs: st.MtimeNs, SizeBytes: st.Size, ParseErrors: pr.ParseErrors}
		if err := cache.SaveFile(pr.File.Path, pr.Records, fi); err != nil {
			slog.Warn("caching journal failed", "path", pr.File.Path, "error", err)
		}
	}

	slog.Debug("journals loaded",
		"files", result.TotalFiles,
		"cache_hits", result.CacheHits,
		"reparsed", result.Reparsed,
		"pruned", result.Pruned,
	)

	result.Snapshot = Merge(files, byPath)
	result.Snapshot.Revision = revision(stamps)
	return result, nil
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "noralyzer")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "noralyzer")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "journals.db")
}
