package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// JournalExt is the extension of ledger journal files.
const JournalExt = ".jsonl"

// ScanDir walks dataDir and returns every journal file ordered by relative
// path, which is the order their records are applied in.
func ScanDir(dataDir string) ([]DiscoveredFile, error) {
	info, err := os.Stat(dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var files []DiscoveredFile

	err = filepath.WalkDir(dataDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if d.IsDir() {
			if path != dataDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != JournalExt || strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		rel, _ := filepath.Rel(dataDir, path)
		files = append(files, DiscoveredFile{
			Path:    path,
			RelPath: filepath.ToSlash(rel),
		})
		return nil
	})

	sort.Slice(files, func(i, j int) bool {
		return files[i].RelPath < files[j].RelPath
	})
	return files, err
}
