package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/noralyzer/noralyzer/internal/source"

	"github.com/mitchellh/hashstructure/v2"
)

// LoadResult holds the output of the full data loading pipeline.
type LoadResult struct {
	Snapshot    *Snapshot
	TotalFiles  int
	ParsedFiles int
	ParseErrors int
	Skipped     int
	FileErrors  int
	LineErrors  []FileLineError
}

// FileLineError is a rejected journal line with the file it came from.
type FileLineError struct {
	Path string
	source.LineError
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Load discovers and parses every journal in dataDir and merges them into
// a snapshot. It uses a bounded worker pool for parallel parsing.
func Load(dataDir string, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := source.ScanDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dataDir, err)
	}

	result := &LoadResult{TotalFiles: len(files)}
	stamps := statFiles(files)

	parsed := parseAll(files, func(n int) {
		if progressFn != nil {
			progressFn(n, len(files))
		}
	})

	byPath := make(map[string][]source.Record, len(files))
	for _, pr := range parsed {
		if pr.Err != nil {
			result.FileErrors++
			slog.Warn("journal unreadable", "path", pr.File.Path, "error", pr.Err)
			continue
		}
		result.collect(pr)
		byPath[pr.File.Path] = pr.Records
	}

	result.Snapshot = Merge(files, byPath)
	result.Snapshot.Revision = revision(stamps)
	return result, nil
}

func (r *LoadResult) collect(pr source.ParseResult) {
	r.ParsedFiles++
	r.ParseErrors += pr.ParseErrors
	r.Skipped += pr.Skipped
	for _, le := range pr.Errors {
		r.LineErrors = append(r.LineErrors, FileLineError{Path: pr.File.Path, LineError: le})
	}
}

// parseAll parses files on a bounded worker pool. Results keep the order
// of files. onDone receives the running count of finished files.
func parseAll(files []source.DiscoveredFile, onDone func(n int)) []source.ParseResult {
	results := make([]source.ParseResult, len(files))
	if len(files) == 0 {
		return results
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = source.ParseFile(files[idx])
				n := processed.Add(1)
				if onDone != nil {
					onDone(int(n))
				}
			}
		}()
	}

	wg.Wait()
	return results
}

// fileStamp identifies one version of a journal file.
type fileStamp struct {
	Path    string
	MtimeNs int64
	Size    int64
}

func statFiles(files []source.DiscoveredFile) []fileStamp {
	stamps := make([]fileStamp, 0, len(files))
	for _, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			continue
		}
		stamps = append(stamps, fileStamp{Path: f.Path, MtimeNs: info.ModTime().UnixNano(), Size: info.Size()})
	}
	return stamps
}

// revision fingerprints a set of file stamps. Any create, edit or delete of
// a journal changes it.
func revision(stamps []fileStamp) uint64 {
	sorted := append([]fileStamp(nil), stamps...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })
	h, err := hashstructure.Hash(sorted, hashstructure.FormatV2, nil)
	if err != nil {
		return uint64(time.Now().UnixNano())
	}
	return h
}
