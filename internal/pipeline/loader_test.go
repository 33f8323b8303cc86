package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/noralyzer/noralyzer/internal/common"
	"github.com/noralyzer/noralyzer/internal/model"
	"github.com/noralyzer/noralyzer/internal/source"
	"github.com/noralyzer/noralyzer/internal/store"
)

func writeFile(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func seedLedger(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "2024/01.jsonl",
		`{"type":"category","id":1,"name":"Food"}`,
		`{"type":"category","id":2,"name":"Rent"}`,
		`{"type":"entry","id":"a","amount":100,"kind":"expense","date":"2024-01-15","category_id":1}`,
		`{"type":"entry","id":"b","amount":50,"kind":"expense","date":"2024-01-20","category_id":1}`,
		`{"type":"entry","id":"c","amount":200,"kind":"income","date":"2024-01-10"}`,
		`{"type":"entry","id":"bad","amount":-1,"kind":"income","date":"2024-01-10"}`,
	)
	writeFile(t, dir, "ledger.jsonl",
		`{"type":"entry","id":"b","amount":60,"kind":"expense","date":"2024-01-20","category_id":1}`,
		`{"type":"delete","target":"entry","id":"a"}`,
		`{"type":"delete","target":"category","id":2}`,
		`{"type":"budget","id":1,"name":"Food","amount":500,"category_id":1}`,
		`{"type":"goal","id":1,"name":"Trip","target_amount":1000,"current_amount":100,"category_id":1}`,
	)
	return dir
}

func TestLoad_MergesAcrossFiles(t *testing.T) {
	dir := seedLedger(t)

	result, err := Load(dir, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if result.TotalFiles != 2 || result.ParsedFiles != 2 {
		t.Errorf("files = %d/%d, want 2/2", result.ParsedFiles, result.TotalFiles)
	}
	if result.ParseErrors != 1 || len(result.LineErrors) != 1 || result.LineErrors[0].Line != 6 {
		t.Errorf("parse errors = %d %+v", result.ParseErrors, result.LineErrors)
	}

	snap := result.Snapshot
	var ids []string
	for _, e := range snap.Entries {
		ids = append(ids, string(e.ID))
	}
	if strings.Join(ids, ",") != "b,c" {
		t.Errorf("entries = %v, want [b c]", ids)
	}
	assertDec(t, "b amount", snap.Entries[0].Amount, "60")

	if _, ok := snap.Lookups.Categories["2"]; ok {
		t.Error("deleted category still present")
	}
	if len(snap.Budgets) != 1 || len(snap.Goals) != 1 {
		t.Errorf("budgets/goals = %d/%d", len(snap.Budgets), len(snap.Goals))
	}
	if snap.Revision == 0 {
		t.Error("Revision not set")
	}
}

func TestMerge_ReAddAfterDeleteMovesToEnd(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.jsonl",
		`{"type":"entry","id":"x","amount":1,"kind":"income","date":"2024-01-01"}`,
		`{"type":"entry","id":"y","amount":2,"kind":"income","date":"2024-01-01"}`,
	)
	writeFile(t, dir, "b.jsonl",
		`{"type":"delete","target":"entry","id":"x"}`,
	)
	writeFile(t, dir, "c.jsonl",
		`{"type":"entry","id":"x","amount":3,"kind":"income","date":"2024-01-01"}`,
	)

	result, err := Load(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	got := result.Snapshot.Entries
	if len(got) != 2 || got[0].ID != "y" || got[1].ID != "x" {
		t.Fatalf("entries = %+v, want y then x", got)
	}
	assertDec(t, "x amount", got[1].Amount, "3")
}

func TestMerge_ReAddInSameFileMovesToEnd(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.jsonl",
		`{"type":"entry","id":"x","amount":1,"kind":"income","date":"2024-01-01"}`,
		`{"type":"entry","id":"y","amount":2,"kind":"income","date":"2024-01-01"}`,
		`{"type":"delete","target":"entry","id":"x"}`,
		`{"type":"entry","id":"x","amount":3,"kind":"income","date":"2024-01-01"}`,
	)

	result, err := Load(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	got := result.Snapshot.Entries
	if len(got) != 2 || got[0].ID != "y" || got[1].ID != "x" {
		t.Fatalf("entries = %+v, want y then x", got)
	}
}

func TestLocate_TombstoneRemovesFromLaterSortingJournal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ledger.jsonl",
		`{"type":"entry","id":"l1","amount":10,"kind":"income","date":"2024-01-01"}`,
	)
	wallet := writeFile(t, dir, "wallet.jsonl",
		`{"type":"entry","id":"w1","amount":75,"kind":"expense","date":"2024-01-02"}`,
	)

	key := source.RecordKey{Type: source.TypeEntry, ID: "w1"}
	path, err := Locate(dir, key)
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if path != wallet {
		t.Fatalf("Locate = %s, want %s", path, wallet)
	}
	if _, err := source.AppendRecord(path, source.TypeDelete, source.RawDelete{Target: key.Type, ID: key.ID}); err != nil {
		t.Fatal(err)
	}

	result, err := Load(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	got := result.Snapshot.Entries
	if len(got) != 1 || got[0].ID != "l1" {
		t.Fatalf("entries after delete = %+v, want only l1", got)
	}
	assertDec(t, "expense", Sum(got, ExpenseLike).Total, "0")

	if _, err := Locate(dir, key); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Locate after delete = %v, want ErrNotFound", err)
	}
}

func TestLocate_FollowsLatestVersion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.jsonl",
		`{"type":"category","id":1,"name":"Food"}`,
	)
	later := writeFile(t, dir, "b.jsonl",
		`{"type":"category","id":1,"name":"Groceries"}`,
	)

	path, err := Locate(dir, source.RecordKey{Type: source.TypeCategory, ID: "1"})
	if err != nil || path != later {
		t.Fatalf("Locate = %s, %v; want %s", path, err, later)
	}
	if _, err := Locate(dir, source.RecordKey{Type: source.TypeEntry, ID: "nope"}); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("unknown id: err = %v, want ErrNotFound", err)
	}
}

func TestLoad_EmptyDir(t *testing.T) {
	result, err := Load(filepath.Join(t.TempDir(), "missing"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Snapshot.Entries) != 0 || result.TotalFiles != 0 {
		t.Errorf("result = %+v", result)
	}
}

func TestLoadWithCache_ReparsesOnlyChanged(t *testing.T) {
	dir := seedLedger(t)
	cache, err := store.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = cache.Close() }()

	first, err := LoadWithCache(dir, cache, nil)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	if first.Reparsed != 2 || first.CacheHits != 0 {
		t.Errorf("first: reparsed %d hits %d", first.Reparsed, first.CacheHits)
	}

	second, err := LoadWithCache(dir, cache, nil)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if second.Reparsed != 0 || second.CacheHits != 2 {
		t.Errorf("second: reparsed %d hits %d", second.Reparsed, second.CacheHits)
	}
	if second.ParseErrors != 1 {
		t.Errorf("cached ParseErrors = %d, want 1", second.ParseErrors)
	}
	if second.Snapshot.Revision != first.Snapshot.Revision {
		t.Error("revision changed without file changes")
	}
	if len(second.Snapshot.Entries) != len(first.Snapshot.Entries) {
		t.Errorf("cached entries = %d, want %d", len(second.Snapshot.Entries), len(first.Snapshot.Entries))
	}

	// Append a record and bump mtime so the change is visible even on
	// filesystems with coarse timestamps.
	path := writeFile(t, dir, "ledger.jsonl",
		`{"type":"entry","id":"z","amount":5,"kind":"cash_in","date":"2024-02-01"}`,
	)
	future := time.Now().Add(time.Minute)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}

	third, err := LoadWithCache(dir, cache, nil)
	if err != nil {
		t.Fatalf("third load: %v", err)
	}
	if third.Reparsed != 1 || third.CacheHits != 1 {
		t.Errorf("third: reparsed %d hits %d", third.Reparsed, third.CacheHits)
	}
	if third.Snapshot.Revision == second.Snapshot.Revision {
		t.Error("revision unchanged after journal edit")
	}
	var found bool
	for _, e := range third.Snapshot.Entries {
		if e.ID == "z" && e.Kind == model.KindCashIn {
			found = true
		}
	}
	if !found {
		t.Error("new entry z missing after reload")
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	fourth, err := LoadWithCache(dir, cache, nil)
	if err != nil {
		t.Fatal(err)
	}
	if fourth.Pruned != 1 {
		t.Errorf("Pruned = %d, want 1", fourth.Pruned)
	}
}
