package pipeline

import (
	"fmt"
	"time"

	"github.com/noralyzer/noralyzer/internal/common"
	"github.com/noralyzer/noralyzer/internal/model"
	"github.com/noralyzer/noralyzer/internal/source"
)

// Merge applies the records of every file, in file order, to build a
// snapshot. A later record replaces an earlier one with the same (type, id)
// in place; a tombstone removes it, and a record re-added after removal
// moves to the end.
func Merge(files []source.DiscoveredFile, byPath map[string][]source.Record) *Snapshot {
	var (
		order []source.RecordKey
		pos   = make(map[source.RecordKey]int)
		vals  = make(map[source.RecordKey]any)
	)

	for _, f := range files {
		for _, rec := range byPath[f.Path] {
			key := rec.Key()
			if rec.Type == source.TypeDelete {
				delete(pos, key)
				delete(vals, key)
				continue
			}
			if _, ok := pos[key]; !ok {
				pos[key] = len(order)
				order = append(order, key)
			}
			vals[key] = rec.Value
		}
	}

	snap := &Snapshot{Lookups: NewLookups(), LoadedAt: time.Now()}
	for i, key := range order {
		if p, ok := pos[key]; !ok || p != i {
			continue
		}
		switch v := vals[key].(type) {
		case model.Entry:
			snap.Entries = append(snap.Entries, v)
		case model.Category:
			snap.Lookups.Categories[v.ID] = v
		case model.Bank:
			snap.Lookups.Banks[v.ID] = v
		case model.Card:
			snap.Lookups.Cards[v.ID] = v
		case model.Person:
			snap.Lookups.People[v.ID] = v
		case model.Place:
			snap.Lookups.Places[v.ID] = v
		case model.Tag:
			snap.Lookups.Tags[v.ID] = v
		case model.Budget:
			snap.Budgets = append(snap.Budgets, v)
		case model.Goal:
			snap.Goals = append(snap.Goals, v)
		}
	}
	return snap
}

// Locate returns the journal holding the live version of key, applying
// records in the same order Merge does. A tombstone appended to that file
// removes the record whatever journals sort after it. It returns
// common.ErrNotFound when no live record has that key.
func Locate(dataDir string, key source.RecordKey) (string, error) {
	files, err := source.ScanDir(dataDir)
	if err != nil {
		return "", fmt.Errorf("scanning %s: %w", dataDir, err)
	}

	var path string
	for _, pr := range parseAll(files, nil) {
		if pr.Err != nil {
			return "", fmt.Errorf("reading %s: %w", pr.File.Path, pr.Err)
		}
		for _, rec := range pr.Records {
			if rec.Key() != key {
				continue
			}
			if rec.Type == source.TypeDelete {
				path = ""
			} else {
				path = pr.File.Path
			}
		}
	}
	if path == "" {
		return "", fmt.Errorf("%s %s: %w", key.Type, key.ID, common.ErrNotFound)
	}
	return path, nil
}
